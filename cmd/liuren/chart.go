package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"liuren/internal/chart"
)

var (
	chartNumber1 int
	chartNumber2 int
	chartAt      string
)

// chartCmd prints the raw lattice without interpretation.
var chartCmd = &cobra.Command{
	Use:   "chart",
	Short: "Print the raw chart lattice for two numbers",
	Long: `Computes and prints the six-palace, six-beast and six-kinship lattice
without any interpretation.

Example:
  liuren chart --n1 3 --n2 5
  liuren chart --n1 3 --n2 5 --at 2024-03-15T10:00:00+08:00`,
	RunE: runChart,
}

func init() {
	chartCmd.Flags().IntVar(&chartNumber1, "n1", 0, "first number (1-6)")
	chartCmd.Flags().IntVar(&chartNumber2, "n2", 0, "second number (1-6)")
	chartCmd.Flags().StringVar(&chartAt, "at", "", "ask time (RFC 3339, default now)")
	_ = chartCmd.MarkFlagRequired("n1")
	_ = chartCmd.MarkFlagRequired("n2")
}

func runChart(cmd *cobra.Command, args []string) error {
	s, err := buildStack(cmd.Context())
	if err != nil {
		return err
	}
	defer s.Close()

	at := time.Now()
	if chartAt != "" {
		at, err = time.Parse(time.RFC3339, chartAt)
		if err != nil {
			return fmt.Errorf("parse --at: %w", err)
		}
	}

	engine, err := chart.NewEngine(s.base)
	if err != nil {
		return err
	}
	c, err := engine.Generate(chartNumber1, chartNumber2, at)
	if err != nil {
		return err
	}

	printChart(c)
	return nil
}

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	luogongStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("220"))
	markerStyle  = lipgloss.NewStyle().Faint(true)
)

// printChart renders the lattice as a position table.
func printChart(c *chart.Chart) {
	fmt.Println(headerStyle.Render(fmt.Sprintf("起卦 %d·%d  时辰 %s（%s）  落宫 第%d宫",
		c.Number1, c.Number2, c.HourBranch.Name, c.HourBranch.Window, c.Luogong)))

	for i := 0; i < 6; i++ {
		p := c.Palaces[i]
		line := fmt.Sprintf("%d  %s(%s)  %s(%s)  %s  %s",
			p.Position, p.Name, p.Element, p.Branch, p.BranchElement,
			c.Beasts[i].Name, c.Kinship[i].Label)

		var marks []string
		if p.IsLuogong {
			marks = append(marks, "落宫")
		}
		if p.IsBodyPalace {
			marks = append(marks, "身宫")
		}
		if p.IsUsePalace {
			marks = append(marks, "用宫")
		}
		if len(marks) > 0 {
			line += "  " + markerStyle.Render("«"+strings.Join(marks, "·")+"»")
		}

		if p.IsLuogong {
			fmt.Println(luogongStyle.Render(line))
		} else {
			fmt.Println(line)
		}
	}

	elements := make([]string, 0, len(c.Elements.Present))
	for _, el := range c.Elements.Present {
		elements = append(elements, string(el))
	}
	fmt.Println(markerStyle.Render("五行：" + strings.Join(elements, " ")))
}
