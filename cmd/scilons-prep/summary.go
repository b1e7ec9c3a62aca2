package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/ryabhmd/scilons-eval/prepare"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	dimStyle    = lipgloss.NewStyle().Faint(true)
)

var splitHeaders = []string{"Split", "Examples", "Batches", "Mean len", "Std len", "Max len", "Skipped"}

func newTable() *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers(splitHeaders...)
}

func statsRow(name string, s prepare.Stats) []string {
	return []string{
		name,
		fmt.Sprint(s.Examples),
		fmt.Sprint(s.Batches),
		fmt.Sprintf("%.1f", s.MeanLen),
		fmt.Sprintf("%.1f", s.StdLen),
		fmt.Sprint(s.MaxLen),
		fmt.Sprint(s.Skipped),
	}
}

// render formats the report for the terminal.
func render(report *prepare.Report) string {
	var sections []string
	sections = append(sections,
		dimStyle.Render("run "+report.RunID.String()),
		dimStyle.Render("tokenizer "+report.Tokenizer.String()))
	for _, ds := range report.NER {
		t := newTable()
		for _, split := range ds.Splits {
			t.Row(statsRow(split.Name, split.Stats)...)
		}
		sections = append(sections,
			titleStyle.Render(fmt.Sprintf("%s (sequence labeling, %d labels)", ds.Name, ds.Labels.Len())),
			dimStyle.Render(strings.Join(ds.Labels.Labels(), " ")),
			t.String())
	}
	for _, ds := range report.Classification {
		t := newTable()
		for _, split := range ds.Splits {
			t.Row(statsRow(split.Name, split.Stats)...)
		}
		sections = append(sections,
			titleStyle.Render(fmt.Sprintf("%s (classification, %d labels)", ds.Name, ds.Labels.Len())),
			dimStyle.Render(strings.Join(ds.Labels.Labels(), " ")),
			t.String())
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}
