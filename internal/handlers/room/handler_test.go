package room_test

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	otelMocks "libres/infras/otel/mocks"
	"libres/internal/domains/room/model/dto"
	"libres/internal/domains/room/service/mocks"
	"libres/internal/handlers/room"
	gDto "libres/shared/dto"
	"libres/shared/failure"
)

func setup(t *testing.T) (*mocks.MockRoom, http.Handler) {
	t.Helper()

	svc := mocks.NewMockRoom(gomock.NewController(t))

	handler := room.New(svc, otelMocks.NewOtel())
	router := chi.NewRouter()
	handler.Router(router)

	return svc, router
}

func form(t *testing.T, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	for key, value := range fields {
		require.NoError(t, writer.WriteField(key, value))
	}

	require.NoError(t, writer.Close())

	return body, writer.FormDataContentType()
}

func TestHandler_CreateRoom(t *testing.T) {
	tests := []struct {
		name       string
		fields     map[string]string
		setup      func(svc *mocks.MockRoom)
		wantStatus int
	}{
		{
			name:   "created",
			fields: map[string]string{"name": "Sessiz Okuma Salonu", "capacity": "12", "location": "2. kat"},
			setup: func(svc *mocks.MockRoom) {
				svc.EXPECT().Create(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, req dto.CreateRoomRequest) (int64, error) {
						assert.Equal(t, "Sessiz Okuma Salonu", req.Name)
						assert.Equal(t, 12, req.Capacity)
						assert.Nil(t, req.Image)

						return 4, nil
					})
			},
			wantStatus: http.StatusCreated,
		},
		{
			name:       "capacity missing",
			fields:     map[string]string{"name": "Grup Calisma Odasi"},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "capacity not a number",
			fields:     map[string]string{"name": "Grup Calisma Odasi", "capacity": "twelve"},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "unknown status",
			fields:     map[string]string{"name": "Grup Calisma Odasi", "capacity": "6", "status": "closed"},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:   "duplicate name",
			fields: map[string]string{"name": "Grup Calisma Odasi", "capacity": "6"},
			setup: func(svc *mocks.MockRoom) {
				svc.EXPECT().Create(gomock.Any(), gomock.Any()).Return(int64(0), failure.Conflict("room already exists"))
			},
			wantStatus: http.StatusConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, router := setup(t)
			if tt.setup != nil {
				tt.setup(svc)
			}

			body, contentType := form(t, tt.fields)
			req := httptest.NewRequest(http.MethodPost, "/rooms", body)
			req.Header.Set("Content-Type", contentType)

			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
		})
	}

	t.Run("not a multipart body", func(t *testing.T) {
		_, router := setup(t)

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/rooms", bytes.NewBufferString(`{"name":"x"}`)))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHandler_GetRooms(t *testing.T) {
	tests := []struct {
		name        string
		query       string
		wantFilters int
		wantStatus  int
	}{
		{name: "no filters", query: "", wantFilters: 0, wantStatus: http.StatusOK},
		{name: "name and capacity", query: "?name=salon&min_capacity=4", wantFilters: 2, wantStatus: http.StatusOK},
		{name: "bookable in a slot", query: "?date=2026-10-20&time_slot_id=3", wantFilters: 1, wantStatus: http.StatusOK},
		{name: "date without slot is ignored", query: "?date=2026-10-20", wantFilters: 0, wantStatus: http.StatusOK},
		{name: "bad capacity", query: "?min_capacity=many", wantStatus: http.StatusBadRequest},
		{name: "bad date", query: "?date=20-10-2026&time_slot_id=3", wantStatus: http.StatusBadRequest},
		{name: "bad slot", query: "?date=2026-10-20&time_slot_id=0", wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, router := setup(t)

			if tt.wantStatus == http.StatusOK {
				svc.EXPECT().GetAll(gomock.Any(), gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, params gDto.QueryParams, filter gDto.FilterGroup) (dto.GetRoomsResponse, error) {
						assert.Len(t, filter.Filters, tt.wantFilters)
						assert.Equal(t, 1, params.Page)

						return dto.GetRoomsResponse{TotalPage: 1}, nil
					})
			}

			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/rooms"+tt.query, nil))

			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
		})
	}
}

func TestHandler_GetRooms_StatusWithSlot(t *testing.T) {
	svc, router := setup(t)

	svc.EXPECT().GetAll(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ gDto.QueryParams, filter gDto.FilterGroup) (dto.GetRoomsResponse, error) {
			_, args := filter.GetWhereClause()

			assert.Equal(t, "maintenance", args["status"])
			assert.Equal(t, "empty", args["available_status"])

			return dto.GetRoomsResponse{}, nil
		})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/rooms?status=maintenance&date=2026-10-20&time_slot_id=3", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHandler_DeleteRoom(t *testing.T) {
	svc, router := setup(t)

	svc.EXPECT().Delete(gomock.Any(), int64(4)).Return(failure.NotFound("room not found"))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/rooms/4", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
