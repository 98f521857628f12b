package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/helixml/moviesearch/domain/search"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("99")).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	scoreStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Padding(0, 1)
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

func searchCmd() *cobra.Command {
	var (
		envFile string
		limit   int
		asJSON  bool
	)

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Rank movies against a free-text query",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd.OutOrStdout(), envFile, strings.Join(args, " "), limit, asJSON)
		},
	}

	cmd.Flags().StringVar(&envFile, "env-file", "", "Path to .env file")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Number of results (default: SEARCH_LIMIT)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print results as JSON")

	return cmd
}

func runSearch(w io.Writer, envFile, query string, limit int, asJSON bool) error {
	s, err := openSession(envFile)
	if err != nil {
		return err
	}
	defer s.Close()

	results, err := s.client.Find(s.ctx, query, limit)
	if err != nil {
		return fmt.Errorf("search: %w", err)
	}

	if asJSON {
		return writeJSON(w, results)
	}
	_, err = fmt.Fprintln(w, renderTable(query, results))
	return err
}

type resultJSON struct {
	MovieID int64   `json:"movie_id"`
	Title   string  `json:"title"`
	Genres  string  `json:"genres"`
	Score   float64 `json:"score"`
}

func writeJSON(w io.Writer, results []search.Result) error {
	out := make([]resultJSON, len(results))
	for i, r := range results {
		out[i] = resultJSON{MovieID: r.MovieID(), Title: r.Title(), Genres: r.Genres(), Score: r.Score()}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// renderTable lays results out as a rounded table, best match first.
func renderTable(query string, results []search.Result) string {
	if len(results) == 0 {
		return dimStyle.Render(fmt.Sprintf("No movies match %q.", query))
	}

	rows := make([][]string, len(results))
	for i, r := range results {
		rows[i] = []string{
			strconv.Itoa(i + 1),
			strconv.FormatInt(r.MovieID(), 10),
			r.Title(),
			strings.ReplaceAll(r.Genres(), "|", ", "),
			strconv.FormatFloat(r.Score(), 'f', 4, 64),
		}
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(dimStyle).
		Headers("#", "ID", "TITLE", "GENRES", "SCORE").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case col == 4:
				return scoreStyle
			default:
				return cellStyle
			}
		})

	return t.String()
}
