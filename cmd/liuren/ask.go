package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"liuren/internal/algorithm"
	"liuren/internal/store"
)

var (
	askNumber1  int
	askNumber2  int
	askGender   string
	askQuestion string
	askLost     string
)

// askCmd runs one divination directly from flags, skipping the chat loop.
var askCmd = &cobra.Command{
	Use:   "ask",
	Short: "Run one divination from flags",
	Long: `Computes and interprets a single divination without the chat loop.

Example:
  liuren ask --n1 3 --n2 5 --gender 男 --question 事业`,
	RunE: runAsk,
}

func init() {
	askCmd.Flags().IntVar(&askNumber1, "n1", 0, "first number (1-6)")
	askCmd.Flags().IntVar(&askNumber2, "n2", 0, "second number (1-6)")
	askCmd.Flags().StringVar(&askGender, "gender", "", "gender (男 or 女)")
	askCmd.Flags().StringVar(&askQuestion, "question", "综合", "question type")
	askCmd.Flags().StringVar(&askLost, "lost", "", "lost object description (switches to lost-object analysis)")
	_ = askCmd.MarkFlagRequired("n1")
	_ = askCmd.MarkFlagRequired("n2")
}

func runAsk(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	s, err := buildStack(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	adapter, err := algorithm.NewLiurenAdapter(s.base)
	if err != nil {
		return err
	}

	in := algorithm.Inputs{
		Operation:    algorithm.OpInterpret,
		Number1:      askNumber1,
		Number2:      askNumber2,
		Gender:       askGender,
		QuestionType: askQuestion,
		AskTime:      time.Now(),
	}
	if askLost != "" {
		in.Operation = algorithm.OpFindLostObject
		in.Description = askLost
	}

	if inv := adapter.Validate(in); inv != nil {
		for _, f := range inv.Fields {
			fmt.Printf("invalid %s: %s\n", f.Field, f.Reason)
		}
		return fmt.Errorf("invalid inputs")
	}

	out, err := adapter.Run(ctx, in)
	if err != nil {
		return err
	}

	printChart(out.Chart)
	fmt.Println()
	fmt.Println(out.Summary)

	rec := store.Record{
		UserID:       userID,
		Number1:      in.Number1,
		Number2:      in.Number2,
		Gender:       in.Gender,
		QuestionType: in.QuestionType,
		AskTime:      in.AskTime,
		Luogong:      out.Chart.Luogong,
		Palace:       out.Chart.PalaceAtLuogong().Name,
		Summary:      out.Summary,
	}
	if out.Interpretation != nil {
		rec.Favorable = out.Interpretation.Favorable
	}
	saveCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if _, err := s.records.Save(saveCtx, rec); err != nil {
		logger.Warn("record not saved", zap.Error(err))
	}
	return nil
}
