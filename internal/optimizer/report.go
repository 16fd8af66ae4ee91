package optimizer

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
)

// Report prints one block per result followed by the totals.
func Report(w io.Writer, s *Summary) error {
	if _, err := fmt.Fprintln(w, "🚀 Optimizando imágenes..."); err != nil {
		return err
	}
	fmt.Fprintln(w)

	for _, r := range s.Results {
		switch r.Kind {
		case KindOptimized:
			fmt.Fprintf(w, "✅ %s\n", r.Task.SourcePath)
			fmt.Fprintf(w, "   %s → %s (%s)\n",
				humanize.Bytes(uint64(r.OriginalBytes)),
				humanize.Bytes(uint64(r.NewBytes)),
				FormatReduction(r.OriginalBytes, r.NewBytes))
		case KindSkipped:
			fmt.Fprintf(w, "⏭️  %s (%s)\n", r.Task.SourcePath, skipText(r.Reason))
		case KindFailed:
			fmt.Fprintf(w, "❌ Error optimizing %s: %s\n", r.Task.SourcePath, r.Message)
		}
	}

	fmt.Fprintln(w)
	_, err := fmt.Fprintf(w, "✨ %d optimized, %d skipped, %d failed (%s saved)\n",
		s.Optimized, s.Skipped, s.Failed, humanize.Bytes(uint64(s.BytesSaved())))
	return err
}

// FormatReduction renders the size change as a signed percentage.
func FormatReduction(original, newSize int64) string {
	if original <= 0 {
		return "n/a"
	}
	pct := float64(original-newSize) / float64(original) * 100
	if pct >= 0 {
		return fmt.Sprintf("-%.1f%%", pct)
	}
	return fmt.Sprintf("+%.1f%%", -pct)
}

func skipText(reason SkipReason) string {
	switch reason {
	case ReasonAlreadyFresh:
		return "up to date"
	case ReasonSourceMissing:
		return "file not found"
	default:
		return string(reason)
	}
}
