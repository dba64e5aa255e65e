package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newAnswerCmd() *cobra.Command {
	var playerID string
	var questionIndex int
	var answer string

	cmd := &cobra.Command{
		Use:   "answer <code>",
		Short: "Submit an answer for a question",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			code := args[0]

			req := map[string]any{
				"player_id":      playerID,
				"question_index": questionIndex,
				"answer":         answer,
			}

			var result SubmitAnswerResult
			if err := client.Post(fmt.Sprintf("/api/v1/rooms/%s/answers", code), req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&playerID, "player", "", "Player ID returned when joining (required)")
	cmd.Flags().IntVar(&questionIndex, "index", 0, "Zero-based question index")
	cmd.Flags().StringVar(&answer, "answer", "", "Answer text (required)")
	_ = cmd.MarkFlagRequired("player")
	_ = cmd.MarkFlagRequired("answer")

	return cmd
}
