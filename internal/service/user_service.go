package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/vishaldhakad2025/GharZo-sub002/internal/models"
	appErrors "github.com/vishaldhakad2025/GharZo-sub002/pkg/errors"
)

type userRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error)
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
	Deactivate(ctx context.Context, id string) error
	RevokeUserRefreshTokens(ctx context.Context, userID string) error
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// UserService manages sub-admin accounts under a landlord.
type UserService struct {
	repo      userRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewUserService constructs the service.
func NewUserService(repo userRepository, validate *validator.Validate, logger *zap.Logger) *UserService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{repo: repo, validator: validate, logger: logger}
}

// CreateSubAdminRequest describes a new sub-admin account.
type CreateSubAdminRequest struct {
	Email       string   `json:"email" validate:"required,email"`
	Password    string   `json:"password" validate:"required,min=6"`
	FullName    string   `json:"full_name" validate:"required"`
	Phone       string   `json:"phone"`
	Permissions []string `json:"permissions" validate:"required,min=1"`
}

// UpdateSubAdminRequest modifies a sub-admin's profile and grants.
type UpdateSubAdminRequest struct {
	FullName    string   `json:"full_name" validate:"required"`
	Phone       string   `json:"phone"`
	Permissions []string `json:"permissions" validate:"required,min=1"`
	Active      bool     `json:"active"`
}

// ListSubAdminsRequest filters the landlord's sub-admin roster.
type ListSubAdminsRequest struct {
	Active   *bool  `json:"active"`
	Search   string `json:"search"`
	Page     int    `json:"page"`
	PageSize int    `json:"page_size"`
}

var knownPermissions = map[string]bool{
	models.PermissionProperties:    true,
	models.PermissionRooms:         true,
	models.PermissionTenants:       true,
	models.PermissionExpenses:      true,
	models.PermissionAnnouncements: true,
	models.PermissionComplaints:    true,
	models.PermissionDocuments:     true,
	models.PermissionDues:          true,
	models.PermissionVisits:        true,
}

func validatePermissions(keys []string) error {
	for _, key := range keys {
		if !knownPermissions[key] {
			return appErrors.Clone(appErrors.ErrValidation, "unknown permission key: "+key)
		}
	}
	return nil
}

// ListSubAdmins returns the landlord's sub-admins with pagination.
func (s *UserService) ListSubAdmins(ctx context.Context, landlordID string, req ListSubAdminsRequest) ([]models.User, *models.Pagination, error) {
	role := models.RoleSubAdmin
	filter := models.UserFilter{
		Role:       &role,
		LandlordID: landlordID,
		Active:     req.Active,
		Search:     req.Search,
		Page:       req.Page,
		PageSize:   req.PageSize,
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	users, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list sub-admins")
	}
	pagination := &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}
	return users, pagination, nil
}

// GetSubAdmin loads one sub-admin belonging to the landlord.
func (s *UserService) GetSubAdmin(ctx context.Context, landlordID, id string) (*models.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "sub-admin not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load sub-admin")
	}
	if user.Role != models.RoleSubAdmin || user.LandlordID == nil || *user.LandlordID != landlordID {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "sub-admin not found")
	}
	return user, nil
}

// CreateSubAdmin registers a sub-admin account scoped to the landlord.
func (s *UserService) CreateSubAdmin(ctx context.Context, landlordID string, req CreateSubAdminRequest) (*models.User, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	if err := validatePermissions(req.Permissions); err != nil {
		return nil, err
	}

	if existing, err := s.repo.FindByEmail(ctx, req.Email); err == nil && existing != nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "email already registered")
	} else if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check email")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}

	user := &models.User{
		Email:        req.Email,
		PasswordHash: string(hash),
		FullName:     req.FullName,
		Phone:        req.Phone,
		Role:         models.RoleSubAdmin,
		LandlordID:   &landlordID,
		Permissions:  req.Permissions,
		Active:       true,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create sub-admin")
	}

	s.audit(ctx, landlordID, models.AuditActionSubAdminCreate, user.ID, map[string]interface{}{
		"email":       user.Email,
		"permissions": req.Permissions,
	})
	return user, nil
}

// UpdateSubAdmin modifies a sub-admin's profile and permission grants.
func (s *UserService) UpdateSubAdmin(ctx context.Context, landlordID, id string, req UpdateSubAdminRequest) (*models.User, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	if err := validatePermissions(req.Permissions); err != nil {
		return nil, err
	}

	user, err := s.GetSubAdmin(ctx, landlordID, id)
	if err != nil {
		return nil, err
	}

	user.FullName = req.FullName
	user.Phone = req.Phone
	user.Permissions = req.Permissions
	user.Active = req.Active
	if err := s.repo.Update(ctx, user); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update sub-admin")
	}

	if !user.Active {
		if err := s.repo.RevokeUserRefreshTokens(ctx, user.ID); err != nil {
			s.logger.Warn("failed to revoke tokens of deactivated sub-admin", zap.Error(err))
		}
	}

	s.audit(ctx, landlordID, models.AuditActionSubAdminUpdate, user.ID, map[string]interface{}{
		"permissions": req.Permissions,
		"active":      req.Active,
	})
	return user, nil
}

// DisableSubAdmin deactivates a sub-admin and revokes their sessions.
func (s *UserService) DisableSubAdmin(ctx context.Context, landlordID, id string) error {
	user, err := s.GetSubAdmin(ctx, landlordID, id)
	if err != nil {
		return err
	}
	if err := s.repo.Deactivate(ctx, user.ID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to disable sub-admin")
	}
	if err := s.repo.RevokeUserRefreshTokens(ctx, user.ID); err != nil {
		s.logger.Warn("failed to revoke tokens of disabled sub-admin", zap.Error(err))
	}
	s.audit(ctx, landlordID, models.AuditActionSubAdminDisable, user.ID, nil)
	return nil
}

func (s *UserService) audit(ctx context.Context, actorID, action, resourceID string, values map[string]interface{}) {
	var payload []byte
	if values != nil {
		payload, _ = json.Marshal(values)
	}
	log := &models.AuditLog{
		UserID:     &actorID,
		Action:     action,
		Resource:   "sub-admin",
		ResourceID: &resourceID,
		NewValues:  payload,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.repo.CreateAuditLog(ctx, log); err != nil {
		s.logger.Warn("failed to record audit log", zap.String("action", action), zap.Error(err))
	}
}
