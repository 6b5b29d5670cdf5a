package dto_test

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"libres/shared/constant"
	"libres/shared/dto"
	"libres/shared/model"
	"libres/shared/timezone"
)

func TestMetadataFrom(t *testing.T) {
	created := time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC)
	modified := created.Add(90 * time.Minute)

	got := dto.MetadataFrom(model.Metadata{
		CreatedAt:  created,
		ModifiedAt: modified,
		CreatedBy:  "root@libres.local",
		ModifiedBy: "member@libres.local",
	})

	assert.Equal(t, dto.Metadata{
		CreatedAt:  timezone.Format(created, constant.DateFormat),
		ModifiedAt: timezone.Format(modified, constant.DateFormat),
		CreatedBy:  "root@libres.local",
		ModifiedBy: "member@libres.local",
	}, got)
}

func TestQueryParams_FromRequest(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		paginate bool
		want     dto.QueryParams
	}{
		{
			name:     "all parameters",
			query:    "page=2&limit=20&sort_by=name&sort_dir=asc",
			paginate: true,
			want:     dto.QueryParams{Page: 2, Limit: 20, SortBy: "name", SortDir: dto.SortDirAsc},
		},
		{
			name:     "defaults when paginating",
			paginate: true,
			want:     dto.QueryParams{Page: constant.DefaultValuePage, Limit: constant.DefaultValueLimit},
		},
		{
			name:  "no defaults without paginate",
			query: "sort_by=capacity",
			want:  dto.QueryParams{SortBy: "capacity"},
		},
		{
			name:     "malformed numbers fall back",
			query:    "page=abc&limit=-5",
			paginate: true,
			want:     dto.QueryParams{Page: constant.DefaultValuePage, Limit: constant.DefaultValueLimit},
		},
		{
			name:  "limit is capped",
			query: "limit=5000",
			want:  dto.QueryParams{Limit: constant.MaxValueLimit},
		},
		{
			name:  "unknown sort direction ignored",
			query: "sort_dir=sideways",
			want:  dto.QueryParams{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/v1/rooms?"+tt.query, nil)

			var got dto.QueryParams
			got.FromRequest(r, tt.paginate)

			assert.Equal(t, tt.want, got)
		})
	}
}

func TestQueryParams_Offset(t *testing.T) {
	assert.Equal(t, 0, dto.QueryParams{}.Offset())
	assert.Equal(t, 0, dto.QueryParams{Page: 1, Limit: 10}.Offset())
	assert.Equal(t, 20, dto.QueryParams{Page: 3, Limit: 10}.Offset())
	assert.Equal(t, 0, dto.QueryParams{Page: 3}.Offset())
}
