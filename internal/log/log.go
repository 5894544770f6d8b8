package log

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/apex/log"
)

const EnvLevel = "GHORG_LOG"

// InitLogger installs Handler on stderr. The level comes from GHORG_LOG
// (default error); verbose forces debug.
func InitLogger(verbose bool) {
	level := strings.ToLower(os.Getenv(EnvLevel))
	if level == "" {
		level = "error"
	}
	if verbose {
		level = "debug"
	}

	log.SetHandler(NewHandler(os.Stderr))

	parsed, err := log.ParseLevel(level)
	if err != nil {
		log.SetLevel(log.ErrorLevel)
		log.Errorf("unknown %s level %q, using error", EnvLevel, level)
		return
	}
	log.SetLevel(parsed)
}

// Handler writes one line per entry: timestamp, level initial, message
// and sorted fields.
type Handler struct {
	mu sync.Mutex
	w  io.Writer
}

func NewHandler(w io.Writer) *Handler {
	return &Handler{w: w}
}

func (h *Handler) HandleLog(e *log.Entry) error {
	timestamp := e.Timestamp
	if timestamp.IsZero() {
		timestamp = time.Now()
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s %.1s %s", timestamp.Format("2006-01-02 15:04:05"), strings.ToUpper(e.Level.String()), e.Message)

	names := e.Fields.Names()
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(&b, " %s=%v", name, e.Fields.Get(name))
	}
	b.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.w, b.String())
	return err
}
