package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/user-directory/internal/domain"
	"github.com/spec-kit/user-directory/internal/events"
	"github.com/spec-kit/user-directory/internal/repository"
)

// UserDirectory enforces the business rules over a UserStore.
// It holds no state of its own and is the only caller of the store.
type UserDirectory struct {
	store      repository.UserStore
	dispatcher events.Dispatcher
	logger     *zap.Logger
	recorder   OperationRecorder
	newID      func() uuid.UUID
}

// OperationRecorder receives the outcome of every directory operation.
type OperationRecorder interface {
	RecordOperation(operation, outcome string, duration time.Duration)
}

// DirectoryDependencies bundles collaborators for the directory.
type DirectoryDependencies struct {
	Store      repository.UserStore
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
	Recorder   OperationRecorder
	// NewID overrides id generation; defaults to uuid.New.
	NewID func() uuid.UUID
}

// UserFilter narrows ListUsers. A nil Gender means no filtering.
type UserFilter struct {
	Gender *string
}

// UserInput describes the fields accepted on creation.
// A nil Age means the caller did not supply one.
type UserInput struct {
	ID        uuid.UUID
	FirstName string
	LastName  string
	Gender    domain.Gender
	Age       *int
	Email     string
}

// NewUserDirectory constructs the service.
func NewUserDirectory(deps DirectoryDependencies) *UserDirectory {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	newID := deps.NewID
	if newID == nil {
		newID = uuid.New
	}
	return &UserDirectory{
		store:      deps.Store,
		dispatcher: deps.Dispatcher,
		logger:     logger,
		recorder:   deps.Recorder,
		newID:      newID,
	}
}

// ListUsers returns all users, or only those matching the gender filter.
func (d *UserDirectory) ListUsers(ctx context.Context, filter UserFilter) (_ []domain.User, err error) {
	defer d.observe("list", time.Now(), &err)

	var (
		gender    domain.Gender
		filtering bool
	)
	if filter.Gender != nil {
		parsed, ok := domain.ParseGender(*filter.Gender)
		if !ok {
			return nil, &domain.InvalidFilterError{Value: *filter.Gender}
		}
		gender, filtering = parsed, true
	}

	users, err := d.store.SelectAll(ctx)
	if err != nil {
		return nil, err
	}
	if !filtering {
		return users, nil
	}

	matched := make([]domain.User, 0, len(users))
	for _, user := range users {
		if user.Gender == gender {
			matched = append(matched, user)
		}
	}
	return matched, nil
}

// GetUser fetches a user by id.
func (d *UserDirectory) GetUser(ctx context.Context, id uuid.UUID) (_ domain.User, err error) {
	defer d.observe("get", time.Now(), &err)

	return d.lookup(ctx, id)
}

func (d *UserDirectory) lookup(ctx context.Context, id uuid.UUID) (domain.User, error) {
	user, found, err := d.store.SelectByID(ctx, id)
	if err != nil {
		return domain.User{}, err
	}
	if !found {
		return domain.User{}, &domain.NotFoundError{ID: id}
	}
	return user, nil
}

// CreateUser validates input, assigns an id when missing and stores the record.
func (d *UserDirectory) CreateUser(ctx context.Context, input UserInput) (_ domain.User, err error) {
	defer d.observe("create", time.Now(), &err)

	if err := validateUserInput(input); err != nil {
		return domain.User{}, err
	}

	id := input.ID
	if id == uuid.Nil {
		id = d.newID()
	} else {
		_, exists, err := d.store.SelectByID(ctx, id)
		if err != nil {
			return domain.User{}, err
		}
		if exists {
			return domain.User{}, &domain.ConflictError{ID: id}
		}
	}

	user := domain.User{
		ID:        id,
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Gender:    input.Gender,
		Age:       *input.Age,
		Email:     input.Email,
	}

	count, err := d.store.Insert(ctx, id, user)
	if err != nil {
		return domain.User{}, err
	}
	if count == 0 && input.ID != uuid.Nil {
		// Lost a race with another create for the same supplied id.
		return domain.User{}, &domain.ConflictError{ID: id}
	}
	if count != 1 {
		return domain.User{}, notAcknowledged("insert", id, count, d.logger)
	}

	d.logger.Info("user created", zap.String("user_id", id.String()))
	d.publishEvent(ctx, events.Event{
		Type:    events.EventUserCreated,
		UserID:  id.String(),
		Payload: events.NewUserChangedPayload(user),
	})
	return user, nil
}

// UpdateUser replaces every field of an existing user, keeping its id.
//
// Fields are deliberately not validated here: only the insert path validates.
// Callers wanting stricter updates must validate before calling.
func (d *UserDirectory) UpdateUser(ctx context.Context, user domain.User) (err error) {
	defer d.observe("update", time.Now(), &err)

	if _, err := d.lookup(ctx, user.ID); err != nil {
		return err
	}

	count, err := d.store.Update(ctx, user)
	if err != nil {
		return err
	}
	if count != 1 {
		return notAcknowledged("update", user.ID, count, d.logger)
	}

	d.logger.Info("user updated", zap.String("user_id", user.ID.String()))
	d.publishEvent(ctx, events.Event{
		Type:    events.EventUserUpdated,
		UserID:  user.ID.String(),
		Payload: events.NewUserChangedPayload(user),
	})
	return nil
}

// DeleteUser permanently removes an existing user.
func (d *UserDirectory) DeleteUser(ctx context.Context, id uuid.UUID) (err error) {
	defer d.observe("delete", time.Now(), &err)

	existing, err := d.lookup(ctx, id)
	if err != nil {
		return err
	}

	count, err := d.store.DeleteByID(ctx, id)
	if err != nil {
		return err
	}
	if count != 1 {
		return notAcknowledged("delete", id, count, d.logger)
	}

	d.logger.Info("user deleted", zap.String("user_id", id.String()))
	d.publishEvent(ctx, events.Event{
		Type:    events.EventUserDeleted,
		UserID:  id.String(),
		Payload: events.UserDeletedPayload{Email: existing.Email},
	})
	return nil
}

func validateUserInput(input UserInput) error {
	if strings.TrimSpace(input.FirstName) == "" {
		return domain.NewMissingFieldError("first_name")
	}
	if strings.TrimSpace(input.LastName) == "" {
		return domain.NewMissingFieldError("last_name")
	}
	if input.Age == nil {
		return domain.NewMissingFieldError("age")
	}
	if *input.Age < 0 {
		return &domain.ValidationError{Field: "age", Message: "age must not be negative"}
	}
	if strings.TrimSpace(input.Email) == "" {
		return domain.NewMissingFieldError("email")
	}
	if input.Gender == "" {
		return domain.NewMissingFieldError("gender")
	}
	if !input.Gender.Valid() {
		return &domain.ValidationError{Field: "gender", Message: "unknown gender " + string(input.Gender)}
	}
	return nil
}

// notAcknowledged turns an unexpected affected-row count into a storage fault.
func notAcknowledged(op string, id uuid.UUID, count int, logger *zap.Logger) error {
	logger.Error("store did not acknowledge write",
		zap.String("op", op),
		zap.String("user_id", id.String()),
		zap.Int("count", count))
	return domain.NewStorageError(op, domain.ErrWriteNotAcknowledged)
}

func (d *UserDirectory) observe(operation string, start time.Time, err *error) {
	if d.recorder == nil {
		return
	}
	d.recorder.RecordOperation(operation, outcomeOf(*err), time.Since(start))
}

func outcomeOf(err error) string {
	var (
		validationErr *domain.ValidationError
		filterErr     *domain.InvalidFilterError
		notFoundErr   *domain.NotFoundError
		conflictErr   *domain.ConflictError
	)
	switch {
	case err == nil:
		return "ok"
	case errors.As(err, &validationErr):
		return "invalid_input"
	case errors.As(err, &filterErr):
		return "invalid_filter"
	case errors.As(err, &notFoundErr):
		return "not_found"
	case errors.As(err, &conflictErr):
		return "conflict"
	default:
		return "storage_error"
	}
}

func (d *UserDirectory) publishEvent(ctx context.Context, event events.Event) {
	if d.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if err := d.dispatcher.Publish(ctx, event); err != nil {
		d.logger.Warn("event handler failed", zap.String("event_type", string(event.Type)), zap.Error(err))
	}
}
