package deck

import (
	"context"
	"errors"
	"fmt"

	"deck-player/config"
	"deck-player/debug"
)

// NewOpener picks drivers from the configured deck driver. "auto" tries a
// Stream Deck first and then a Launchpad.
func NewOpener(cfg config.DeckConfig) Opener {
	switch cfg.Driver {
	case config.DriverStreamDeck:
		return func(ctx context.Context) (Device, error) {
			return FindStreamDeck(ctx, cfg.Serial)
		}
	case config.DriverLaunchpad:
		return func(ctx context.Context) (Device, error) {
			return FindLaunchpad(ctx)
		}
	case config.DriverVirtual:
		return NewVirtual().Opener()
	case config.DriverNone:
		return func(context.Context) (Device, error) {
			return nil, fmt.Errorf("%w: deck disabled", ErrDeviceUnavailable)
		}
	default:
		return func(ctx context.Context) (Device, error) {
			sd, err := FindStreamDeck(ctx, cfg.Serial)
			if err == nil {
				return sd, nil
			}
			debug.Log("deck", "stream deck: %v", err)

			lp, lerr := FindLaunchpad(ctx)
			if lerr == nil {
				return lp, nil
			}
			debug.Log("deck", "launchpad: %v", lerr)
			return nil, errors.Join(err, lerr)
		}
	}
}
