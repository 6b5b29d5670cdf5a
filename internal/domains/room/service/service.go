package service

//go:generate go run go.uber.org/mock/mockgen -source=./service.go -destination=./mocks/service_mock.go -package=mocks

import (
	"context"
	"fmt"
	"mime/multipart"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"libres/config"
	"libres/infras/otel"
	"libres/infras/s3"
	"libres/internal/domains/room/model"
	"libres/internal/domains/room/model/dto"
	"libres/internal/domains/room/repository"
	"libres/shared"
	"libres/shared/cache"
	"libres/shared/constant"
	gDto "libres/shared/dto"
	"libres/shared/failure"
)

const cacheKeys = shared.CacheKeys(model.EntityName)

var errRoomNotFound = failure.NotFound("room not found")

type Room interface {
	Create(ctx context.Context, req dto.CreateRoomRequest) (int64, error)
	GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (dto.GetRoomsResponse, error)
	Count(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (int, error)
	Get(ctx context.Context, id int64) (dto.RoomResponse, error)
	Update(ctx context.Context, req dto.UpdateRoomRequest, id int64) error
	UpdateStatus(ctx context.Context, req dto.UpdateStatusRequest, id int64) error
	Delete(ctx context.Context, id int64) error
}

type serviceImpl struct {
	repo   repository.Room
	cfg    *config.Config
	cache  cache.RedisCache
	otel   otel.Otel
	images s3.S3
}

func New(repo repository.Room, cfg *config.Config, cache cache.RedisCache, otel otel.Otel, images s3.S3) Room {
	return &serviceImpl{
		repo:   repo,
		cfg:    cfg,
		cache:  cache,
		otel:   otel,
		images: images,
	}
}

// AvailableFilter matches rooms open for booking with no confirmed reservation on date and slot.
func AvailableFilter(date time.Time, slotID int64) gDto.FilterGroup {
	filter := gDto.FilterGroup{}
	filter.And(
		gDto.Filter{
			ArgName:  "available_status",
			Field:    model.FieldStatus,
			Operator: gDto.FilterOperatorEq,
			Value:    constant.RoomStatusEmpty,
			Table:    model.TableName,
		},
		gDto.Filter{
			Operator: gDto.FilterPlainQuery,
			Value: `NOT EXISTS (SELECT 1 FROM reservations WHERE reservations.room_id = rooms.id ` +
				`AND reservations.reservation_date = :available_date AND reservations.time_slot_id = :available_slot ` +
				`AND reservations.status = 'confirmed')`,
			Args: map[string]any{
				"available_date": date.Format(constant.DateOnlyFormat),
				"available_slot": slotID,
			},
		},
	)

	return filter
}

// Create stores the room, uploading its image first. The image is removed again if the
// insert fails.
func (s *serviceImpl) Create(ctx context.Context, req dto.CreateRoomRequest) (id int64, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".room.Create")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	image, err := s.upload(ctx, req.Image, req.ImageFile)
	if err != nil {
		return 0, err
	}

	id, err = s.repo.Insert(ctx, req.ToModel(shared.Actor(ctx), image.url))
	if err != nil {
		log.Error().Err(err).Str("name", req.Name).Msg("failed to create room")
		s.remove(ctx, image.object)

		return 0, fmt.Errorf("failed to create room: %w", err)
	}

	s.invalidate(ctx)

	return id, nil
}

func (s *serviceImpl) GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (res dto.GetRoomsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".room.GetAll")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	return cache.Remember(ctx, s.cache, cacheKeys.List(req, filter), s.cfg.Cache.TTL, func(ctx context.Context) (dto.GetRoomsResponse, error) {
		var page dto.GetRoomsResponse

		total, err := s.Count(ctx, req, filter)
		if err != nil {
			return page, err
		}

		rooms, err := s.repo.GetAll(ctx, req, filter)
		if err != nil {
			log.Error().Err(err).Msg("failed to list rooms")

			return page, fmt.Errorf("failed to list rooms: %w", err)
		}

		page.FromModels(rooms, total, req.Limit)

		return page, nil
	})
}

func (s *serviceImpl) Count(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (total int, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".room.Count")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	return cache.Remember(ctx, s.cache, cacheKeys.Count(req, filter), s.cfg.Cache.TTL, func(ctx context.Context) (int, error) {
		total, err := s.repo.Count(ctx, filter)
		if err != nil {
			log.Error().Err(err).Msg("failed to count rooms")

			return 0, fmt.Errorf("failed to count rooms: %w", err)
		}

		return total, nil
	})
}

func (s *serviceImpl) Get(ctx context.Context, id int64) (res dto.RoomResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".room.Get")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	return cache.Remember(ctx, s.cache, cacheKeys.One(id), s.cfg.Cache.TTL, func(ctx context.Context) (dto.RoomResponse, error) {
		var out dto.RoomResponse

		room, err := s.find(ctx, id)
		if err != nil {
			return out, err
		}

		out.FromModel(room)

		return out, nil
	})
}

// Update applies the non nil fields of req. A new image replaces the stored one, which is
// then deleted from the bucket.
func (s *serviceImpl) Update(ctx context.Context, req dto.UpdateRoomRequest, id int64) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".room.Update")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if req.IsEmpty() {
		return failure.BadRequestFromString("update request cannot be empty") // nolint:wrapcheck
	}

	current, err := s.find(ctx, id)
	if err != nil {
		return err
	}

	image, err := s.upload(ctx, req.Image, req.ImageFile)
	if err != nil {
		return err
	}

	fields := shared.ChangedColumns(req, shared.Actor(ctx))
	if image.url != constant.Empty {
		fields[model.FieldImage] = image.url
	}

	if err = s.repo.Update(ctx, fields, shared.FilterByID(id, model.FieldID, model.TableName)); err != nil {
		log.Error().Err(err).Int64("room_id", id).Msg("failed to update room")
		s.remove(ctx, image.object)

		return fmt.Errorf("failed to update room: %w", err)
	}

	if image.url != constant.Empty {
		s.removeURL(ctx, current.Image)
	}

	s.invalidate(ctx, id)

	return nil
}

// UpdateStatus is the administrative status switch. Reservations never call it implicitly.
func (s *serviceImpl) UpdateStatus(ctx context.Context, req dto.UpdateStatusRequest, id int64) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".room.UpdateStatus")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	filter := shared.FilterByID(id, model.FieldID, model.TableName)

	exist, err := s.repo.Exist(ctx, filter)
	switch {
	case err != nil:
		log.Error().Err(err).Int64("room_id", id).Msg("failed to check room")

		return fmt.Errorf("failed to check room: %w", err)
	case !exist:
		return errRoomNotFound
	}

	if err = s.repo.Update(ctx, shared.ChangedColumns(req, shared.Actor(ctx)), filter); err != nil {
		log.Error().Err(err).Int64("room_id", id).Msg("failed to update room status")

		return fmt.Errorf("failed to update room status: %w", err)
	}

	log.Info().Int64("room_id", id).Str("status", req.Status).Msg("room status changed")

	s.invalidate(ctx, id)

	return nil
}

// Delete removes the room and, through the cascade, every reservation that references it.
func (s *serviceImpl) Delete(ctx context.Context, id int64) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".room.Delete")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	room, err := s.find(ctx, id)
	if err != nil {
		return err
	}

	if err = s.repo.Delete(ctx, shared.FilterByID(id, model.FieldID, model.TableName)); err != nil {
		log.Error().Err(err).Int64("room_id", id).Msg("failed to delete room")

		return fmt.Errorf("failed to delete room: %w", err)
	}

	s.removeURL(ctx, room.Image)
	s.invalidate(ctx, id)

	go shared.InvalidateCaches(context.WithoutCancel(ctx), s.cache, constant.CachePrefixReservation)

	return nil
}

func (s *serviceImpl) find(ctx context.Context, id int64) (model.Room, error) {
	room, err := s.repo.Get(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Int64("room_id", id).Msg("failed to get room")

		return room, fmt.Errorf("failed to get room: %w", err)
	}

	if room.ID == 0 {
		return room, errRoomNotFound
	}

	return room, nil
}

type uploaded struct {
	url    string
	object string
}

func (s *serviceImpl) upload(ctx context.Context, header *multipart.FileHeader, file multipart.File) (uploaded, error) {
	if header == nil {
		return uploaded{}, nil
	}

	object := uuid.NewString() + filepath.Ext(header.Filename)

	url, err := s.images.UploadFile(ctx, s.cfg.External.S3.BucketName, model.EntityName, file, header, object)
	if err != nil {
		log.Error().Err(err).Str("file", header.Filename).Msg("failed to upload room image")

		return uploaded{}, fmt.Errorf("failed to upload image: %w", err)
	}

	return uploaded{url: url, object: object}, nil
}

func (s *serviceImpl) removeURL(ctx context.Context, url string) {
	if url == constant.Empty {
		return
	}

	s.remove(ctx, s.images.GetObjectNameFromURL(s.cfg.External.S3.BucketName, url))
}

// remove deletes an uploaded object. Keys carry the entity directory, so only the base name
// is passed on. Failures leave an orphaned object and are only logged.
func (s *serviceImpl) remove(ctx context.Context, object string) {
	if object == constant.Empty {
		return
	}

	if err := s.images.DeleteFile(ctx, s.cfg.External.S3.BucketName, model.EntityName, filepath.Base(object)); err != nil {
		log.Warn().Err(err).Str("object", object).Msg("failed to delete room image")
	}
}

// invalidate drops the cached lists and counts, plus the single room entries of ids.
func (s *serviceImpl) invalidate(ctx context.Context, ids ...any) {
	go cacheKeys.Evict(context.WithoutCancel(ctx), s.cache, ids...)
}
