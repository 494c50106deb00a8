// pkg/privilege_check/privileges.go
package privilege_check

import (
	"context"
	"os"
	"os/user"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"

	"github.com/wwantools/modemstress/pkg/ms_err"
)

// PrivilegeLevel classifies the invoking user.
type PrivilegeLevel string

const (
	PrivilegeLevelRoot    PrivilegeLevel = "root"
	PrivilegeLevelRegular PrivilegeLevel = "regular"
)

// PrivilegeCheck captures the result of a privilege assessment.
type PrivilegeCheck struct {
	UserID    int
	GroupID   int
	Username  string
	Level     PrivilegeLevel
	IsRoot    bool
	Timestamp time.Time
}

// CheckPrivileges checks the current user's privilege level.
func CheckPrivileges(ctx context.Context) *PrivilegeCheck {
	logger := otelzap.Ctx(ctx)

	check := &PrivilegeCheck{
		UserID:    os.Geteuid(),
		GroupID:   os.Getegid(),
		Timestamp: time.Now(),
	}

	if u, err := user.Current(); err == nil {
		check.Username = u.Username
	} else {
		logger.Warn("Failed to get current user info", zap.Error(err))
	}

	check.IsRoot = (check.UserID == 0)
	if check.IsRoot {
		check.Level = PrivilegeLevelRoot
	} else {
		check.Level = PrivilegeLevelRegular
	}

	logger.Debug("Privilege check completed",
		zap.String("username", check.Username),
		zap.Int("uid", check.UserID),
		zap.String("level", string(check.Level)))

	return check
}

// RequireRoot returns an expected user error when the harness is not running
// as root. Fault injection, suspend, and daemon restarts all need euid 0.
func RequireRoot(ctx context.Context) error {
	check := CheckPrivileges(ctx)
	if check.IsRoot {
		return nil
	}

	otelzap.Ctx(ctx).Error("Root privileges required",
		zap.String("username", check.Username),
		zap.Int("uid", check.UserID))

	return ms_err.NewExpectedErrorf("this command must run as root (euid %d); rerun with sudo", check.UserID)
}
