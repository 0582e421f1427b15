package telegram

import (
	"context"

	"go.uber.org/zap"

	"github.com/gotd/td/telegram"
	"github.com/gotd/td/tg"
)

// logUpdates returns an update handler that only logs what arrives.
// Sending never depends on updates.
func logUpdates(logger *zap.Logger) telegram.UpdateHandler {
	return telegram.UpdateHandlerFunc(func(ctx context.Context, u tg.UpdatesClass) error {
		logger.Debug("Received update",
			zap.String("type", u.TypeName()),
			zap.Strings("updates", updateNames(u)),
		)
		return nil
	})
}

// updateNames lists the type names of the updates carried by u.
func updateNames(u tg.UpdatesClass) []string {
	var inner []tg.UpdateClass
	switch v := u.(type) {
	case *tg.Updates:
		inner = v.Updates
	case *tg.UpdatesCombined:
		inner = v.Updates
	case *tg.UpdateShort:
		inner = []tg.UpdateClass{v.Update}
	default:
		return nil
	}

	names := make([]string, 0, len(inner))
	for _, upd := range inner {
		names = append(names, upd.TypeName())
	}
	return names
}
