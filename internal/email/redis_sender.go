package email

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ivanblascoverdu/facturacion/internal/config"
)

// mockEmailTTL is how long captured test emails live in Redis.
const mockEmailTTL = 10 * time.Minute

// RedisSender implements the Sender interface by storing emails in Redis.
// Enabled via MOCK_SERVICES so end-to-end tests can assert on reminder
// deliveries through the service API instead of a real mailbox.
type RedisSender struct {
	client *redis.Client
	cfg    *config.Config
}

// NewRedisSender creates a new RedisSender.
func NewRedisSender(client *redis.Client, cfg *config.Config) Sender {
	return &RedisSender{
		client: client,
		cfg:    cfg,
	}
}

// Send stores a JSON representation of the email under
// "mockemail:{recipient}:{kind}" where kind is derived from the subject.
func (s *RedisSender) Send(ctx context.Context, to []string, subject string, rawMessage []byte) error {
	kind := "other"
	switch {
	case strings.Contains(subject, "Recordatorio"):
		kind = "reminder"
	case strings.Contains(subject, "Factura"):
		kind = "invoice"
	}

	payload, err := json.Marshal(map[string]interface{}{
		"to":      to,
		"from":    s.cfg.SmtpFromAddress,
		"subject": subject,
		"body":    string(rawMessage),
		"sent_at": time.Now().Format(time.RFC3339),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal mock email: %w", err)
	}

	for _, recipient := range to {
		key := fmt.Sprintf("mockemail:%s:%s", recipient, kind)
		if err := s.client.Set(ctx, key, payload, mockEmailTTL).Err(); err != nil {
			return fmt.Errorf("failed to store mock email in Redis: %w", err)
		}
		log.Printf("RedisSender: stored mock email for %s under %s", recipient, key)
	}
	return nil
}
