package metrics

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// AgentConfig is one AI seat configuration in a self-play run.
type AgentConfig struct {
	ID           int
	Difficulty   string
	Personality  string
	ThinkingTime time.Duration
	MaxActions   int
}

type GameRecord struct {
	ID     int
	GameID string
	Agents []int // AgentConfig.ID per seat
	GameMetric
}

type TurnRecord struct {
	Game int // GameRecord.ID
	TurnMetric
}

type Writer struct {
	baseDir string
}

// NewWriter creates a subfolder of dir named by the current timestamp.
func NewWriter(dir string) (*Writer, error) {
	timestamp := time.Now().UTC().Format("20060102T150405Z")
	baseDir := filepath.Join(dir, timestamp)
	err := os.MkdirAll(baseDir, 0755)
	if err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	return &Writer{
		baseDir: baseDir,
	}, nil
}

// Dir returns the folder the writer writes into.
func (w *Writer) Dir() string {
	return w.baseDir
}

func (w *Writer) WriteAgentConfigs(configs []AgentConfig) error {
	header := []string{"id", "difficulty", "personality", "thinking_time", "max_actions"}
	rows := make([][]string, len(configs))
	for i, config := range configs {
		rows[i] = []string{
			strconv.Itoa(config.ID),
			config.Difficulty,
			config.Personality,
			config.ThinkingTime.String(),
			strconv.Itoa(config.MaxActions),
		}
	}
	return w.write("agent_configs.csv", header, rows)
}

func (w *Writer) WriteGameRecords(records []GameRecord) error {
	header := []string{"id", "game_id", "agents", "starting_player", "winner", "start_time", "end_time", "duration", "turns", "actions"}
	rows := make([][]string, len(records))
	for i, record := range records {
		agents := make([]string, len(record.Agents))
		for j, id := range record.Agents {
			agents[j] = strconv.Itoa(id)
		}
		rows[i] = []string{
			strconv.Itoa(record.ID),
			record.GameID,
			strings.Join(agents, ";"),
			record.StartingPlayer,
			record.Winner,
			record.StartTime.Format(time.RFC3339),
			record.EndTime.Format(time.RFC3339),
			record.Duration.String(),
			strconv.Itoa(record.Turns),
			strconv.Itoa(record.TotalActions),
		}
	}
	return w.write("game_records.csv", header, rows)
}

func (w *Writer) WriteTurnRecords(records []TurnRecord) error {
	header := []string{"game", "turn", "player", "actions", "rejected", "immediate", "heuristic", "strategic", "forced", "duration", "episodes", "full_playouts"}
	rows := make([][]string, len(records))
	for i, record := range records {
		rows[i] = []string{
			strconv.Itoa(record.Game),
			strconv.Itoa(record.Turn),
			record.Player,
			strconv.Itoa(record.Actions),
			strconv.Itoa(record.Rejected),
			strconv.Itoa(record.Immediate),
			strconv.Itoa(record.Heuristic),
			strconv.Itoa(record.Strategic),
			strconv.FormatBool(record.Forced),
			record.Duration.String(),
			strconv.Itoa(record.Search.Episodes),
			strconv.Itoa(record.Search.FullPlayouts),
		}
	}
	return w.write("turn_records.csv", header, rows)
}

func (w *Writer) write(name string, header []string, rows [][]string) error {
	path := filepath.Join(w.baseDir, name)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", name, err)
	}
	defer f.Close()

	writer := csv.NewWriter(f)
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write %s header: %w", name, err)
	}
	if err := writer.WriteAll(rows); err != nil {
		return fmt.Errorf("failed to write %s rows: %w", name, err)
	}
	return nil
}
