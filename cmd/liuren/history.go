package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"liuren/internal/store"
)

var (
	historyLimit    int
	historyOffset   int
	historyQuestion string
	historyStats    bool
)

// historyCmd lists past divinations and aggregates.
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List past divinations",
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 10, "max records to show")
	historyCmd.Flags().IntVar(&historyOffset, "offset", 0, "records to skip")
	historyCmd.Flags().StringVar(&historyQuestion, "question", "", "filter by question type")
	historyCmd.Flags().BoolVar(&historyStats, "stats", false, "show aggregates instead of records")
}

func runHistory(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	s, err := buildStack(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	if historyStats {
		stats, err := s.records.Stats(ctx, userID)
		if err != nil {
			return err
		}
		fmt.Printf("共%d卦，吉%d卦\n", stats.Total, stats.Favorable)
		printCounts("按问事", stats.ByQuestionType)
		printCounts("按落宫", stats.ByPalace)
		return nil
	}

	records, err := s.records.List(ctx, userID,
		store.ListFilter{QuestionType: historyQuestion}, historyLimit, historyOffset)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Println("暂无记录")
		return nil
	}

	for _, r := range records {
		verdict := "平"
		if r.Favorable {
			verdict = "吉"
		}
		fmt.Printf("%s  %d·%d  %s  %s  %s  %s\n",
			r.CreatedAt.Local().Format("2006-01-02 15:04"),
			r.Number1, r.Number2, r.QuestionType, r.Palace, verdict, r.Summary)
	}
	return nil
}

func printCounts(title string, counts map[string]int) {
	if len(counts) == 0 {
		return
	}
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fmt.Println(title + "：")
	for _, k := range keys {
		fmt.Printf("  %s: %d\n", k, counts[k])
	}
}
