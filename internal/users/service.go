// Package users implements administrator management of platform accounts.
package users

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dyvilcenter/backoffice/internal/apperr"
	"github.com/dyvilcenter/backoffice/internal/auth"
	dbutil "github.com/dyvilcenter/backoffice/internal/db"
	"github.com/dyvilcenter/backoffice/internal/models"
	"github.com/dyvilcenter/backoffice/internal/security"
	"github.com/dyvilcenter/backoffice/internal/settings"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Service manages user accounts.
type Service struct {
	db    *gorm.DB
	nowFn func() time.Time
}

// NewService constructs a Service.
func NewService(db *gorm.DB) *Service {
	return &Service{db: db, nowFn: func() time.Time { return time.Now().UTC() }}
}

// View is a user row without its password hash.
type View struct {
	ID               string        `json:"id"`
	Username         string        `json:"username"`
	Email            *string       `json:"email"`
	Role             models.Role   `json:"role"`
	Status           models.Status `json:"status"`
	Credits          int64         `json:"credits"`
	Plan             string        `json:"plan"`
	AffiliateCode    string        `json:"affiliate_code"`
	TelegramID       *string       `json:"telegram_id"`
	TelegramUsername *string       `json:"telegram_username"`
	IP               string        `json:"ip"`
	CreatedAt        time.Time     `json:"created_at"`
	LastLogin        *time.Time    `json:"last_login"`
}

func viewOf(u models.User) View {
	return View{
		ID:               u.ID,
		Username:         u.Username,
		Email:            u.Email,
		Role:             u.Role,
		Status:           u.Status,
		Credits:          u.Credits,
		Plan:             u.Plan,
		AffiliateCode:    u.AffiliateCode,
		TelegramID:       u.TelegramID,
		TelegramUsername: u.TelegramUsername,
		IP:               u.IP,
		CreatedAt:        u.CreatedAt,
		LastLogin:        u.LastLogin,
	}
}

// List returns users newest first. A non-empty search matches username or email.
func (s *Service) List(ctx context.Context, identity auth.Identity, search string) ([]View, error) {
	if err := auth.RequireAdmin(identity); err != nil {
		return nil, err
	}

	q := s.db.WithContext(ctx).Model(&models.User{})
	if search = strings.TrimSpace(search); search != "" {
		pattern := dbutil.NormalizeLikePattern(s.db, "%"+search+"%")
		q = q.Where(
			dbutil.CaseInsensitiveLikeExpr(s.db, "username")+" OR "+dbutil.CaseInsensitiveLikeExpr(s.db, "email"),
			pattern, pattern,
		)
	}

	var rows []models.User
	if errFind := q.Order("created_at DESC").Find(&rows).Error; errFind != nil {
		return nil, apperr.Storage("list users", errFind)
	}
	out := make([]View, 0, len(rows))
	for _, row := range rows {
		out = append(out, viewOf(row))
	}
	return out, nil
}

// CreateRequest carries the fields of a new account.
type CreateRequest struct {
	Username         string
	Email            string
	Password         string
	Role             models.Role
	Status           models.Status
	Credits          int64
	Plan             string
	TelegramID       string
	TelegramUsername string
	IP               string
}

// CreateResult reports the identifiers assigned to a new account.
type CreateResult struct {
	ID            string `json:"id"`
	AffiliateCode string `json:"affiliate_code"`
}

// Create adds an account on behalf of an administrator.
func (s *Service) Create(ctx context.Context, identity auth.Identity, req CreateRequest) (CreateResult, error) {
	if err := auth.RequireAdmin(identity); err != nil {
		return CreateResult{}, err
	}
	user, err := s.create(ctx, req)
	if err != nil {
		return CreateResult{}, err
	}
	log.WithFields(log.Fields{"user_id": user.ID, "created_by": identity.UserID}).Info("users: account created")
	return CreateResult{ID: user.ID, AffiliateCode: user.AffiliateCode}, nil
}

// CreateAdmin adds an active administrator without a caller check.
func (s *Service) CreateAdmin(ctx context.Context, username, password string) (models.User, error) {
	return s.create(ctx, CreateRequest{
		Username: username,
		Password: password,
		Role:     models.RoleAdmin,
		Status:   models.StatusActive,
		Plan:     settings.BootstrapAdminPlan,
	})
}

func (s *Service) create(ctx context.Context, req CreateRequest) (models.User, error) {
	username := strings.TrimSpace(req.Username)
	if username == "" || req.Password == "" {
		return models.User{}, ErrCredentialsRequired
	}
	role := req.Role
	if role == "" {
		role = models.RoleUser
	}
	if !role.Valid() {
		return models.User{}, ErrInvalidRole
	}
	status := req.Status
	if status == "" {
		status = models.StatusActive
	}
	if !status.Valid() {
		return models.User{}, ErrInvalidStatus
	}
	if req.Credits < 0 {
		return models.User{}, ErrNegativeCredits
	}
	plan := strings.TrimSpace(req.Plan)
	if plan == "" {
		plan = settings.DefaultPlan
	}

	hash, errHash := security.HashPassword(req.Password)
	if errHash != nil {
		return models.User{}, apperr.Storage("hash password", errHash)
	}

	user := models.User{
		ID:               uuid.NewString(),
		Username:         username,
		Email:            optional(req.Email),
		Password:         hash,
		Role:             role,
		Status:           status,
		Credits:          req.Credits,
		Plan:             plan,
		TelegramID:       optional(req.TelegramID),
		TelegramUsername: optional(req.TelegramUsername),
		IP:               strings.TrimSpace(req.IP),
		CreatedAt:        s.nowFn(),
	}

	errTx := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if errUnique := checkUnique(tx, user, ""); errUnique != nil {
			return errUnique
		}
		code, errCode := uniqueAffiliateCode(tx)
		if errCode != nil {
			return errCode
		}
		user.AffiliateCode = code
		return tx.Create(&user).Error
	})
	if errTx != nil {
		return models.User{}, classify("create user", errTx)
	}
	return user, nil
}

// UpdateRequest carries a partial update. Nil fields are left unchanged; an
// empty string clears an optional field.
type UpdateRequest struct {
	ID               string
	Username         *string
	Email            *string
	Role             *models.Role
	Status           *models.Status
	Credits          *int64
	Plan             *string
	TelegramID       *string
	TelegramUsername *string
	Password         *string
}

// Update applies a partial update to an account.
func (s *Service) Update(ctx context.Context, identity auth.Identity, req UpdateRequest) error {
	if err := auth.RequireAdmin(identity); err != nil {
		return err
	}
	id := strings.TrimSpace(req.ID)
	if id == "" {
		return ErrUserIDRequired
	}

	updates := map[string]any{}
	var candidate models.User
	if req.Username != nil {
		if username := strings.TrimSpace(*req.Username); username != "" {
			updates["username"] = username
			candidate.Username = username
		}
	}
	if req.Email != nil {
		candidate.Email = optional(*req.Email)
		updates["email"] = candidate.Email
	}
	if req.TelegramID != nil {
		candidate.TelegramID = optional(*req.TelegramID)
		updates["telegram_id"] = candidate.TelegramID
	}
	if req.TelegramUsername != nil {
		candidate.TelegramUsername = optional(*req.TelegramUsername)
		updates["telegram_username"] = candidate.TelegramUsername
	}
	if req.Role != nil {
		if !req.Role.Valid() {
			return ErrInvalidRole
		}
		updates["role"] = *req.Role
	}
	if req.Status != nil {
		if !req.Status.Valid() {
			return ErrInvalidStatus
		}
		updates["status"] = *req.Status
	}
	if req.Credits != nil {
		if *req.Credits < 0 {
			return ErrNegativeCredits
		}
		updates["credits"] = *req.Credits
	}
	if req.Plan != nil {
		if plan := strings.TrimSpace(*req.Plan); plan != "" {
			updates["plan"] = plan
		}
	}
	if req.Password != nil && *req.Password != "" {
		hash, errHash := security.HashPassword(*req.Password)
		if errHash != nil {
			return apperr.Storage("hash password", errHash)
		}
		updates["password"] = hash
	}

	errTx := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current models.User
		if errFind := tx.Select("id").Where("id = ?", id).Take(&current).Error; errFind != nil {
			if errors.Is(errFind, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return errFind
		}
		if errUnique := checkUnique(tx, candidate, id); errUnique != nil {
			return errUnique
		}
		if len(updates) == 0 {
			return nil
		}
		return tx.Model(&models.User{}).Where("id = ?", id).Updates(updates).Error
	})
	if errTx != nil {
		return classify("update user", errTx)
	}
	log.WithFields(log.Fields{"user_id": id, "updated_by": identity.UserID, "fields": len(updates)}).Info("users: account updated")
	return nil
}

// Delete removes an account and its sessions in one transaction.
func (s *Service) Delete(ctx context.Context, identity auth.Identity, id string) error {
	if err := auth.RequireAdmin(identity); err != nil {
		return err
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return ErrUserIDRequired
	}

	errTx := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if errSessions := tx.Where("user_id = ?", id).Delete(&models.UserSession{}).Error; errSessions != nil {
			return errSessions
		}
		res := tx.Where("id = ?", id).Delete(&models.User{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrUserNotFound
		}
		return nil
	})
	if errTx != nil {
		return classify("delete user", errTx)
	}
	log.WithFields(log.Fields{"user_id": id, "deleted_by": identity.UserID}).Info("users: account deleted")
	return nil
}

// CountAdmins returns the number of administrator accounts.
func (s *Service) CountAdmins(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("role = ?", models.RoleAdmin).Count(&count).Error; err != nil {
		return 0, apperr.Storage("count admins", err)
	}
	return count, nil
}

// checkUnique rejects values held by another user. Empty fields of u are skipped.
func checkUnique(tx *gorm.DB, u models.User, excludeID string) error {
	checks := []struct {
		column string
		value  *string
		err    error
	}{
		{"username", optional(u.Username), ErrUsernameTaken},
		{"email", u.Email, ErrEmailTaken},
		{"telegram_id", u.TelegramID, ErrTelegramIDTaken},
		{"telegram_username", u.TelegramUsername, ErrTelegramUsernameTaken},
	}
	for _, check := range checks {
		if check.value == nil {
			continue
		}
		q := tx.Model(&models.User{}).Where(check.column+" = ?", *check.value)
		if excludeID != "" {
			q = q.Where("id <> ?", excludeID)
		}
		var count int64
		if err := q.Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return check.err
		}
	}
	return nil
}

func uniqueAffiliateCode(tx *gorm.DB) (string, error) {
	for i := 0; i < settings.AffiliateCodeMaxAttempts; i++ {
		code, err := security.RandomCode(settings.AffiliateCodeAlphabet, settings.AffiliateCodeLength)
		if err != nil {
			return "", err
		}
		var count int64
		if errCount := tx.Model(&models.User{}).Where("affiliate_code = ?", code).Count(&count).Error; errCount != nil {
			return "", errCount
		}
		if count == 0 {
			return code, nil
		}
	}
	return "", apperr.ErrExhaustedCodeSpace
}

// classify passes classified errors through and wraps the rest as storage failures.
func classify(op string, err error) error {
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return err
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicateUser
	}
	return apperr.Storage(op, err)
}

func optional(v string) *string {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	return &v
}
