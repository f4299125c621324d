package notify

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/StormRens/Fake-Twitter/internal/logging"
)

// LogNotifier is the development transport: it writes the plain-text mail
// to w instead of sending it. The structured log only records the recipient.
type LogNotifier struct {
	mu     sync.Mutex
	w      io.Writer
	logger logging.Logger
}

func NewLogNotifier(w io.Writer, logger logging.Logger) *LogNotifier {
	return &LogNotifier{w: w, logger: logger.With("module", "notify.log")}
}

func (n *LogNotifier) SendVerification(ctx context.Context, msg VerificationMessage) error {
	r, err := Render(msg)
	if err != nil {
		return err
	}

	n.mu.Lock()
	_, err = fmt.Fprintf(n.w, "To: %s\nSubject: %s\n\n%s\n", msg.To, r.Subject, r.Text)
	n.mu.Unlock()
	if err != nil {
		return fmt.Errorf("write mail: %w", err)
	}

	n.logger.Info(ctx, "verification mail written", "to", msg.To)
	return nil
}
