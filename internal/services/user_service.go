package services

import (
	"context"
	"fmt"

	"bookmybus/internal/domain"
	"bookmybus/internal/domain/models"
	"bookmybus/internal/utils"
)

// UserService holds the admin-only user management operations.
type UserService struct {
	Users     UserStore
	RequestID string
}

func (s UserService) List(ctx context.Context, r domain.Requester) ([]models.User, error) {
	if err := domain.RequireAdmin(r); err != nil {
		return nil, err
	}
	return userStore(s.Users).List(ctx)
}

func (s UserService) ChangeRole(ctx context.Context, r domain.Requester, id int64, role domain.Role) (models.User, error) {
	if err := domain.RequireAdmin(r); err != nil {
		return models.User{}, err
	}
	if !role.Valid() {
		return models.User{}, domain.ValidationError{Field: "role", Msg: "Role must be user or admin"}
	}
	if id == r.UserID && role != domain.RoleAdmin {
		return models.User{}, domain.ValidationError{Field: "role", Msg: "You cannot remove your own admin role"}
	}
	u, err := userStore(s.Users).UpdateRole(ctx, id, role)
	if err != nil {
		return models.User{}, err
	}
	utils.LogEvent(s.RequestID, "users", "change_role", fmt.Sprintf("user_id=%d role=%s", id, role))
	return u, nil
}

func (s UserService) Delete(ctx context.Context, r domain.Requester, id int64) error {
	if err := domain.RequireAdmin(r); err != nil {
		return err
	}
	if id == r.UserID {
		return domain.ValidationError{Msg: "You cannot delete your own account"}
	}
	if err := userStore(s.Users).Delete(ctx, id); err != nil {
		return err
	}
	utils.LogEvent(s.RequestID, "users", "delete", fmt.Sprintf("user_id=%d", id))
	return nil
}
