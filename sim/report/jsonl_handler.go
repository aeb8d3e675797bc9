package report

import (
	"bufio"
	"encoding/json"
	"os"

	"github.com/hive-sim/hive/sim"
)

// JSONLHandler writes one JSON object per line per filed report, the
// line-protocol event stream spec.md §5 names as an external interface.
type JSONLHandler struct {
	file   *os.File
	writer *bufio.Writer
}

type jsonlRecord struct {
	Type   string            `json:"type"`
	Time   int64             `json:"time"`
	Fields map[string]string `json:"fields,omitempty"`
}

// NewJSONLHandler opens (creating/truncating) path for line-delimited
// JSON report output.
func NewJSONLHandler(path string) (*JSONLHandler, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, &sim.IOError{Source: path, Err: err}
	}
	return &JSONLHandler{file: f, writer: bufio.NewWriter(f)}, nil
}

func (h *JSONLHandler) HandleReport(r sim.Report) {
	rec := jsonlRecord{Type: r.Type, Time: r.Time, Fields: r.Fields}
	data, err := json.Marshal(rec)
	if err != nil {
		return
	}
	_, _ = h.writer.Write(data)
	_ = h.writer.WriteByte('\n')
}

func (h *JSONLHandler) Flush(simTime int64) error {
	return h.writer.Flush()
}

func (h *JSONLHandler) Close() error {
	if err := h.writer.Flush(); err != nil {
		return err
	}
	return h.file.Close()
}
