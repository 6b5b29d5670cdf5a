package s3_test

import (
	"libres/config"
	otelMocks "libres/infras/otel/mocks"
	"libres/infras/s3"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestS3_GetObjectNameFromURL(t *testing.T) {
	cfg := &config.Config{}
	cfg.External.S3.BucketName = "libres"
	cfg.External.S3.PublicDomain = "https://cdn.kutuphane.com/"
	cfg.External.S3.APIEndpoint = "https://s3.kutuphane.com"

	svc := s3.New(cfg, otelMocks.NewOtel())

	tests := []struct {
		name string
		url  string
		want string
	}{
		{name: "public domain", url: "https://cdn.kutuphane.com/rooms/12.png", want: "rooms/12.png"},
		{name: "api endpoint", url: "https://s3.kutuphane.com/libres/rooms/12.png", want: "rooms/12.png"},
		{name: "foreign url", url: "https://elsewhere.com/rooms/12.png", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, svc.GetObjectNameFromURL("", tt.url))
		})
	}
}
