package infrastructure

import (
	"fmt"
	"os/exec"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"

	"github.com/yourusername/wikidump-go/internal/domain"
)

// NotificationService sends desktop notifications for long-running dump transfers
type NotificationService struct {
	config *domain.NotificationConfig
	logger *zap.Logger
	run    func(name string, args ...string) error
}

// NewNotificationService creates a new notification service
func NewNotificationService(config *domain.NotificationConfig, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		config: config,
		logger: logger,
		run: func(name string, args ...string) error {
			return exec.Command(name, args...).Run()
		},
	}
}

// Send sends a notification
func (n *NotificationService) Send(title, message string) error {
	if n == nil || !n.config.Enabled {
		return nil
	}

	var name string
	var args []string
	switch n.config.Method {
	case "osascript":
		name = "osascript"
		args = []string{"-e", fmt.Sprintf(`display notification %q with title %q`, message, title)}
	case "notify-send":
		name = "notify-send"
		args = []string{title, message}
	default:
		n.logger.Warn("Unknown notification method", zap.String("method", n.config.Method))
		return nil
	}

	cmdLine := ShellEscapeCommand(name, args...)
	if err := n.run(name, args...); err != nil {
		n.logger.Error("Failed to send notification",
			zap.String("command", cmdLine),
			zap.Error(err))
		return err
	}

	n.logger.Debug("Notification sent", zap.String("command", cmdLine))
	return nil
}

// NotifyDumpReady sends notification when a dump is available locally
func (n *NotificationService) NotifyDumpReady(packed *domain.PackedDump, size int64) {
	title := "Dump Ready"
	message := fmt.Sprintf("%s (%s, %s)", truncateString(packed.FileName, 60), packed.Source, humanize.IBytes(uint64(size)))
	n.Send(title, message)
}

// NotifyDumpFailed sends notification when a dump could not be made available
func (n *NotificationService) NotifyDumpFailed(d domain.DumpDescriptor, err error) {
	title := "Dump Failed"
	message := fmt.Sprintf("%s: %s", d, truncateString(err.Error(), 80))
	n.Send(title, message)
}

// truncateString truncates a string to the specified length
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
