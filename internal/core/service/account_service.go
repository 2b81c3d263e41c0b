package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/clientmax/agency-crm/internal/core/domain"
	"github.com/clientmax/agency-crm/internal/core/ports"
)

const minPasswordLength = 6

// AccountService implements the privileged account-management actions:
// password resets and full account deletion.
type AccountService struct {
	admin     ports.AdminAuthAPI
	employees ports.EmployeeRepository
	clients   ports.ClientRepository
	roles     ports.UserRoleRepository
	log       zerolog.Logger
}

func NewAccountService(
	admin ports.AdminAuthAPI,
	employees ports.EmployeeRepository,
	clients ports.ClientRepository,
	roles ports.UserRoleRepository,
	log zerolog.Logger,
) *AccountService {
	return &AccountService{
		admin:     admin,
		employees: employees,
		clients:   clients,
		roles:     roles,
		log:       log,
	}
}

// ResetPassword validates the new password and sets it through the
// provider's admin API. Validation happens before any network call.
func (s *AccountService) ResetPassword(ctx context.Context, userID, newPassword string) error {
	if len(newPassword) < minPasswordLength {
		return domain.ErrWeakPassword
	}
	if err := s.admin.UpdatePassword(ctx, userID, newPassword); err != nil {
		return fmt.Errorf("reset password: %w", err)
	}
	s.log.Info().Str("user_id", userID).Msg("password reset")
	return nil
}

// DeleteUser removes an account in three steps: unlink the domain row's
// auth reference, drop any role grants (best-effort), then delete the auth
// identity itself. The unlink must succeed before the identity is touched
// so a failed deletion never strands a dangling foreign key.
func (s *AccountService) DeleteUser(ctx context.Context, userID string, userType domain.IdentityKind, recordID string) error {
	var err error
	switch userType {
	case domain.IdentityEmployee:
		err = s.employees.UnlinkAuthUser(ctx, recordID)
	case domain.IdentityClient:
		err = s.clients.UnlinkAuthUser(ctx, recordID)
	default:
		return fmt.Errorf("%w: user type %q", domain.ErrInvalidAction, userType)
	}
	if err != nil {
		return fmt.Errorf("unlink %s record: %w", userType, err)
	}

	if err := s.roles.DeleteByUserID(ctx, userID); err != nil {
		s.log.Warn().Err(err).Str("user_id", userID).Msg("could not delete role grants")
	}

	if err := s.admin.DeleteUser(ctx, userID); err != nil {
		return fmt.Errorf("delete auth identity: %w", err)
	}

	s.log.Info().
		Str("user_id", userID).
		Str("user_type", string(userType)).
		Msg("account deleted")
	return nil
}
