package s3infra

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/storefront-api/internal/config"
)

func TestDetectContentType(t *testing.T) {
	ct, ok := DetectContentType("Photo.JPG")
	assert.True(t, ok)
	assert.Equal(t, "image/jpeg", ct)

	ct, ok = DetectContentType("a.webp")
	assert.True(t, ok)
	assert.Equal(t, "image/webp", ct)

	_, ok = DetectContentType("doc.pdf")
	assert.False(t, ok)
}

func TestImageKey(t *testing.T) {
	assert.Equal(t, "products/p1/abc.png", ImageKey("p1", "abc", "shirt.PNG"))
}

func TestStore_URLRoundTrip_LocalEndpoint(t *testing.T) {
	s := NewStore(nil, &config.Config{
		S3BucketName:   "images",
		AWSRegion:      "us-east-1",
		AWSEndpointURL: "http://localhost:4566/",
	})
	u := s.URL("products/p1/abc.png")
	assert.Equal(t, "http://localhost:4566/images/products/p1/abc.png", u)

	key, ok := s.KeyFromURL(u)
	assert.True(t, ok)
	assert.Equal(t, "products/p1/abc.png", key)
}

func TestStore_URL_RegionalHost(t *testing.T) {
	s := NewStore(nil, &config.Config{S3BucketName: "images", AWSRegion: "eu-west-1"})
	assert.Equal(t, "https://images.s3.eu-west-1.amazonaws.com/products/x.png", s.URL("products/x.png"))

	_, ok := s.KeyFromURL("https://cdn.example.com/x.png")
	assert.False(t, ok)
}
