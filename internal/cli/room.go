package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

func newRoomCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "room",
		Short: "Room management commands",
	}

	cmd.AddCommand(newRoomCreateCmd())
	cmd.AddCommand(newRoomGetCmd())
	cmd.AddCommand(newRoomJoinCmd())
	cmd.AddCommand(newRoomStartCmd())

	return cmd
}

// questionSpec mirrors the API's question shape for request bodies
type questionSpec struct {
	Prompt        string   `json:"prompt"`
	Options       []string `json:"options,omitempty"`
	CorrectAnswer string   `json:"correct_answer"`
}

func newRoomCreateCmd() *cobra.Command {
	var questionsFile string
	var questions []string
	var timeLimit int

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new room",
		Long: `Create a new quiz room.

Questions come either from a JSON file (--questions-file) holding an array
of {"prompt", "options", "correct_answer"} objects, or from repeated
--question flags in "prompt=answer" form.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			specs, err := loadQuestions(questionsFile, questions)
			if err != nil {
				return err
			}

			req := map[string]any{
				"questions":  specs,
				"time_limit": timeLimit,
			}

			var result CreateRoomResult
			if err := client.Post("/api/v1/rooms", req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&questionsFile, "questions-file", "", "Path to a JSON file of questions")
	cmd.Flags().StringArrayVar(&questions, "question", nil, `Question in "prompt=answer" form (repeatable)`)
	cmd.Flags().IntVar(&timeLimit, "time-limit", 60, "Session time limit in seconds")

	return cmd
}

func loadQuestions(file string, inline []string) ([]questionSpec, error) {
	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("failed to read questions file: %w", err)
		}
		var specs []questionSpec
		if err := json.Unmarshal(data, &specs); err != nil {
			return nil, fmt.Errorf("failed to parse questions file: %w", err)
		}
		return specs, nil
	}

	specs := make([]questionSpec, 0, len(inline))
	for _, q := range inline {
		prompt, answer, ok := strings.Cut(q, "=")
		if !ok {
			return nil, fmt.Errorf("invalid question %q: expected \"prompt=answer\"", q)
		}
		specs = append(specs, questionSpec{Prompt: prompt, CorrectAnswer: answer})
	}
	if len(specs) == 0 {
		return nil, fmt.Errorf("at least one --question or a --questions-file is required")
	}
	return specs, nil
}

func newRoomGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <code>",
		Short: "Get room details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			code := args[0]

			var result Room
			if err := client.Get(fmt.Sprintf("/api/v1/rooms/%s", code), &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newRoomJoinCmd() *cobra.Command {
	var playerName string
	var isHost bool

	cmd := &cobra.Command{
		Use:   "join <code>",
		Short: "Join a room",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			code := args[0]

			req := map[string]any{
				"player_name": playerName,
				"is_host":     isHost,
			}

			var result JoinRoomResult
			if err := client.Post(fmt.Sprintf("/api/v1/rooms/%s/join", code), req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&playerName, "name", "", "Display name (required)")
	cmd.Flags().BoolVar(&isHost, "host", false, "Join as the room host")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func newRoomStartCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "start <code>",
		Short: "Start the game in a room",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			code := args[0]

			var result Room
			if err := client.Post(fmt.Sprintf("/api/v1/rooms/%s/start", code), nil, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}
