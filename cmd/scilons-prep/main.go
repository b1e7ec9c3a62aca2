// scilons-prep prepares the datasets of a configuration file and prints a summary of the
// prepared splits: label sets, batch counts and sequence length statistics.
//
// Usage:
//
//	scilons-prep -config datasets.yaml [-device cpu] [-mode direct|retokenize] [-v=1]
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/ryabhmd/scilons-eval/config"
	"github.com/ryabhmd/scilons-eval/prepare"
	"k8s.io/klog/v2"
)

var (
	flagConfig = flag.String("config", "", "Configuration file (YAML, JSON or TOML). SCILONS_* environment variables override it.")
	flagDevice = flag.String("device", "", "Overrides the configured device.")
	flagMode   = flag.String("mode", "", "Overrides the configured sequence labeling encode mode: \"direct\" or \"retokenize\".")
)

func main() {
	klog.InitFlags(nil)
	flag.Parse()
	defer klog.Flush()

	if err := run(); err != nil {
		klog.Errorf("%+v", err)
		klog.Flush()
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(*flagConfig)
	if err != nil {
		return err
	}
	if *flagDevice != "" {
		cfg.Device = *flagDevice
	}
	if *flagMode != "" {
		cfg.NER.EncodeMode = *flagMode
		if err := cfg.Validate(); err != nil {
			return err
		}
	}
	p, err := prepare.NewFromConfig(cfg)
	if err != nil {
		return err
	}
	report, err := p.Run()
	if err != nil {
		return err
	}
	fmt.Println(render(report))
	return nil
}
