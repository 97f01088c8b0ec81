package checkin

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"festpass/internal/logger"
	"festpass/internal/models"
	"festpass/internal/token"
)

// Scan verdicts. The public surface never says more than these three;
// finer-grained reasons are logged, not returned.
const (
	ResultValid       = "valid"
	ResultAlreadyUsed = "already_used"
	ResultInvalid     = "invalid"
)

// ScanResult is the verdict returned to the door staff UI.
type ScanResult struct {
	Result      string `json:"result"`
	PassID      string `json:"passId,omitempty"`
	Name        string `json:"name,omitempty"`
	PassType    string `json:"passType,omitempty"`
	TeamName    string `json:"teamName,omitempty"`
	MemberCount int    `json:"memberCount,omitempty"`
	Message     string `json:"message"`
}

type PassDBLayer interface {
	GetPass(ctx context.Context, passID string) (*models.Pass, error)
}

type UserDBLayer interface {
	GetUser(ctx context.Context, userID string) (*models.User, error)
}

// Verifier consumes scanned QR payloads and produces a three-way
// verdict. It is read-only: verification never transitions the pass,
// so a flaky network retry cannot silently burn an entitlement.
// Consumption is the separate, explicitly triggered MarkUsed call.
type Verifier struct {
	Codec  *token.Codec
	Passes PassDBLayer
	Users  UserDBLayer
	Logger *logger.Logger
}

func NewVerifier(codec *token.Codec, passes PassDBLayer, users UserDBLayer, log *logger.Logger) *Verifier {
	return &Verifier{Codec: codec, Passes: passes, Users: users, Logger: log}
}

// VerifyScan accepts either the raw token string or a JSON object
// with a "token" field.
func (v *Verifier) VerifyScan(ctx context.Context, payload string) ScanResult {
	raw := extractToken(payload)
	if raw == "" {
		v.Logger.LogScan(ResultInvalid, "-", "unparsable scan payload")
		return ScanResult{Result: ResultInvalid, Message: "invalid or expired token"}
	}

	passID, ok := v.Codec.Verify(raw)
	if !ok {
		v.Logger.LogScan(ResultInvalid, "-", "token signature or expiry check failed")
		return ScanResult{Result: ResultInvalid, Message: "invalid or expired token"}
	}

	pass, err := v.Passes.GetPass(ctx, passID)
	if err != nil {
		v.Logger.LogScan(ResultInvalid, passID, fmt.Sprintf("pass lookup failed: %v", err))
		return ScanResult{Result: ResultInvalid, Message: "pass not found"}
	}

	result := ScanResult{
		PassID:   pass.PassID,
		PassType: pass.PassType,
	}
	v.fillDisplayFields(ctx, pass, &result)

	if pass.IsUsed() {
		result.Result = ResultAlreadyUsed
		result.Message = "pass has already been used"
		v.Logger.LogScan(ResultAlreadyUsed, passID, "duplicate scan")
		return result
	}

	result.Result = ResultValid
	result.Message = "pass is valid"
	v.Logger.LogScan(ResultValid, passID, "scan verified")
	return result
}

// fillDisplayFields resolves the best-effort display fields from the
// pass's denormalized team snapshot or a single user lookup. Never a
// fresh team-collection read: this path stays single-lookup.
func (v *Verifier) fillDisplayFields(ctx context.Context, pass *models.Pass, result *ScanResult) {
	if pass.TeamSnapshot != nil {
		result.TeamName = pass.TeamSnapshot.TeamName
		result.MemberCount = len(pass.TeamSnapshot.Members)
		for _, m := range pass.TeamSnapshot.Members {
			if m.Leader {
				result.Name = m.Name
				break
			}
		}
	}

	if result.Name == "" && pass.UserID != "" {
		if user, err := v.Users.GetUser(ctx, pass.UserID); err == nil {
			result.Name = user.Name
		}
	}
}

func extractToken(payload string) string {
	payload = strings.TrimSpace(payload)
	if payload == "" {
		return ""
	}
	if strings.HasPrefix(payload, "{") {
		var body struct {
			Token string `json:"token"`
		}
		if err := json.Unmarshal([]byte(payload), &body); err != nil {
			return ""
		}
		return strings.TrimSpace(body.Token)
	}
	return payload
}
