package model

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"time"
)

// RunRecord captures one training run for the append-only run log, so a run
// can be reconstructed later: which model, which parameters, which features,
// and how it scored.
type RunRecord struct {
	RunID      string
	Model      string
	Params     Params
	Features   []string
	FoldAucs   []float64
	MeanAuc    float64
	Holdout    *Scores
	TrainedAt  time.Time
	DatasetLen int
}

// AppendRunLog appends a formatted run record to the log file, creating it if
// needed.
func AppendRunLog(path string, rec RunRecord) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open run log: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(formatRunRecord(rec)); err != nil {
		return fmt.Errorf("write run log: %w", err)
	}
	return nil
}

func formatRunRecord(rec RunRecord) string {
	var b strings.Builder
	b.WriteString(rec.TrainedAt.UTC().Format("2006-01-02 15:04:05"))
	b.WriteString("\n")
	b.WriteString(strings.Repeat("-", 100))
	b.WriteString("\n")
	fmt.Fprintf(&b, "Run: %s (%s)\n\n", rec.Model, rec.RunID)
	fmt.Fprintf(&b, "Params: %s\n\n", formatParams(rec.Params))
	fmt.Fprintf(&b, "Features: %s\n\n", strings.Join(rec.Features, ", "))
	fmt.Fprintf(&b, "Rows: %d\n\n", rec.DatasetLen)
	if len(rec.FoldAucs) > 0 {
		aucs := make([]string, len(rec.FoldAucs))
		for i, a := range rec.FoldAucs {
			aucs[i] = fmt.Sprintf("%.4f", a)
		}
		fmt.Fprintf(&b, "Fold AUCs: [%s] mean=%.4f\n\n", strings.Join(aucs, " "), rec.MeanAuc)
	}
	if rec.Holdout != nil {
		s := rec.Holdout
		fmt.Fprintf(&b, "Holdout: accuracy=%.4f precision=%.4f recall=%.4f f1=%.4f roc_auc=%.4f\n\n",
			s.Accuracy, s.Precision, s.Recall, s.F1, s.RocAuc)
	}
	return b.String()
}

func formatParams(p Params) string {
	if len(p) == 0 {
		return "defaults"
	}
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	pairs := make([]string, len(keys))
	for i, k := range keys {
		pairs[i] = k + "=" + p[k]
	}
	return strings.Join(pairs, " ")
}
