package service

import (
	"context"
	"errors"
	"fmt"

	"erp-backend/internal/model"
	"erp-backend/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// --- DTOs ---

type CreateRoleRequest struct {
	Name        string                `json:"name" binding:"required"`
	Description string                `json:"description"`
	Permissions model.RolePermissions `json:"permissions"`
}

type UpdateRoleRequest struct {
	Description *string                `json:"description"`
	Permissions *model.RolePermissions `json:"permissions"`
}

type RoleResponse struct {
	ID          string                `json:"id"`
	Name        string                `json:"name"`
	Description string                `json:"description"`
	IsSystem    bool                  `json:"is_system"`
	Permissions model.RolePermissions `json:"permissions"`
}

type RoleService interface {
	CreateRole(ctx context.Context, req CreateRoleRequest) (*RoleResponse, error)
	GetRole(ctx context.Context, id uuid.UUID) (*RoleResponse, error)
	ListRoles(ctx context.Context) ([]RoleResponse, error)
	UpdateRole(ctx context.Context, id uuid.UUID, req UpdateRoleRequest) (*RoleResponse, error)
	DeleteRole(ctx context.Context, id uuid.UUID) error
	SeedDefaultRoles(ctx context.Context) error
}

type roleService struct {
	repo repository.RoleRepository
}

func NewRoleService(repo repository.RoleRepository) RoleService {
	return &roleService{repo: repo}
}

func (s *roleService) CreateRole(ctx context.Context, req CreateRoleRequest) (*RoleResponse, error) {
	if _, err := s.repo.FindByName(ctx, req.Name); err == nil {
		return nil, fmt.Errorf("%w: role %q already exists", ErrConflict, req.Name)
	}

	role := &model.Role{
		Name:            req.Name,
		Description:     req.Description,
		RolePermissions: req.Permissions,
	}
	if err := s.repo.Create(ctx, role); err != nil {
		return nil, err
	}

	res := toRoleResponse(role)
	return &res, nil
}

func (s *roleService) GetRole(ctx context.Context, id uuid.UUID) (*RoleResponse, error) {
	role, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	res := toRoleResponse(role)
	return &res, nil
}

func (s *roleService) ListRoles(ctx context.Context) ([]RoleResponse, error) {
	roles, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	res := make([]RoleResponse, 0, len(roles))
	for i := range roles {
		res = append(res, toRoleResponse(&roles[i]))
	}
	return res, nil
}

func (s *roleService) UpdateRole(ctx context.Context, id uuid.UUID, req UpdateRoleRequest) (*RoleResponse, error) {
	role, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if role.IsSystem && req.Permissions != nil {
		return nil, fmt.Errorf("%w: permissions of built-in roles cannot be changed", ErrConflict)
	}

	if req.Description != nil {
		role.Description = *req.Description
	}
	if req.Permissions != nil {
		role.RolePermissions = *req.Permissions
	}

	if err := s.repo.Update(ctx, role); err != nil {
		return nil, err
	}
	res := toRoleResponse(role)
	return &res, nil
}

func (s *roleService) DeleteRole(ctx context.Context, id uuid.UUID) error {
	role, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	if role.IsSystem {
		return fmt.Errorf("%w: built-in roles cannot be deleted", ErrConflict)
	}

	count, err := s.repo.CountUsersWithRole(ctx, role.Name)
	if err != nil {
		return err
	}
	if count > 0 {
		return fmt.Errorf("%w: %d user(s) still assigned to role %q", ErrConflict, count, role.Name)
	}

	return s.repo.Delete(ctx, id)
}

// SeedDefaultRoles creates the built-in roles on first boot. Existing roles
// are left untouched.
func (s *roleService) SeedDefaultRoles(ctx context.Context) error {
	defaults := []model.Role{
		{
			Name:            "admin",
			Description:     "Full access to every module",
			IsSystem:        true,
			RolePermissions: model.AllPermissions(),
		},
		{
			Name:        "procurement",
			Description: "Manages purchase orders, invoices and budgets",
			IsSystem:    true,
			RolePermissions: model.RolePermissions{
				ManageSuppliers: true,
				ManageProducts:  true,
				ManageOrders:    true,
				ManageInvoices:  true,
				ManageBudgets:   true,
				ViewReports:     true,
			},
		},
		{
			Name:        "warehouse",
			Description: "Performs stock-in and stock-out operations",
			IsSystem:    true,
			RolePermissions: model.RolePermissions{
				StockIn:     true,
				StockOut:    true,
				ViewReports: true,
			},
		},
		{
			Name:        "viewer",
			Description: "Read-only access to reports",
			IsSystem:    true,
			RolePermissions: model.RolePermissions{
				ViewReports: true,
			},
		},
	}

	for i := range defaults {
		if _, err := s.repo.FindByName(ctx, defaults[i].Name); err == nil {
			continue
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if err := s.repo.Create(ctx, &defaults[i]); err != nil {
			return fmt.Errorf("failed to seed role %q: %w", defaults[i].Name, err)
		}
	}
	return nil
}

func toRoleResponse(role *model.Role) RoleResponse {
	return RoleResponse{
		ID:          role.ID.String(),
		Name:        role.Name,
		Description: role.Description,
		IsSystem:    role.IsSystem,
		Permissions: role.RolePermissions,
	}
}
