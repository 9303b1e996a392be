package services

import (
	"context"
	"errors"

	"github.com/BijjaSagar/vashihat-nama/internal/common"
	"github.com/BijjaSagar/vashihat-nama/internal/cryptox"
	"github.com/BijjaSagar/vashihat-nama/internal/server/otpstore"
)

// issueChallenge generates a numeric code and stores only its hash under key.
func issueChallenge(ctx context.Context, store otpstore.Store, key string) (string, error) {
	code, err := common.MakeNumericCode(otpDigits)
	if err != nil {
		return "", err
	}
	salt, hash := cryptox.HashCode(code)
	if err := store.Save(ctx, key, &otpstore.Challenge{Salt: salt, Hash: hash}); err != nil {
		return "", err
	}
	return code, nil
}

// verifyChallenge checks code against the challenge under key and consumes
// it on success. Every attempt is counted before the comparison; once more
// than maxAttempts have been made the challenge is dropped.
func verifyChallenge(ctx context.Context, store otpstore.Store, key, code string, maxAttempts int) error {
	ch, err := store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, common.ErrOTPExpired) {
			return common.ErrOTPExpired
		}
		return common.ErrorInternal
	}

	n, err := store.RecordAttempt(ctx, key)
	if err != nil {
		return common.ErrorInternal
	}
	if maxAttempts > 0 && n > int64(maxAttempts) {
		_ = store.Delete(ctx, key)
		return common.ErrOTPInvalid
	}

	if !cryptox.CheckCode(code, ch.Salt, ch.Hash) {
		if maxAttempts > 0 && n >= int64(maxAttempts) {
			_ = store.Delete(ctx, key)
		}
		return common.ErrOTPInvalid
	}

	_ = store.Delete(ctx, key)
	return nil
}
