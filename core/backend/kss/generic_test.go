// Copyright 2021 Dalarub & Ettrich GmbH - All Rights Reserved
// Unauthorized copying of this file, via any medium is strictly prohibited
// Proprietary and confidential
// info@dalarub.com
//

package kss_test

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gamemakerclub/api-core/core/backend/kss"
)

func download(t *testing.T, driver kss.Driver, key string) (string, string) {
	t.Helper()
	body, contentType, err := driver.Download(context.Background(), key)
	require.NoError(t, err)
	defer body.Close()
	data, err := io.ReadAll(body)
	require.NoError(t, err)
	return string(data), contentType
}

func test_UploadDownload(t *testing.T, driver kss.Driver) {
	ctx := context.Background()
	key := "/team/project/resource"

	_, _, err := driver.Download(ctx, key)
	assert.Equal(t, kss.ErrNotFound, err)

	require.NoError(t, driver.Upload(ctx, key, "image/png", strings.NewReader("first")))
	data, contentType := download(t, driver, key)
	assert.Equal(t, "first", data)
	assert.Equal(t, "image/png", contentType)

	// uploads replace the file
	require.NoError(t, driver.Upload(ctx, key, "audio/mpeg", strings.NewReader("second")))
	data, contentType = download(t, driver, key)
	assert.Equal(t, "second", data)
	assert.Equal(t, "audio/mpeg", contentType)

	assert.Equal(t, kss.ErrInvalidKey, driver.Upload(ctx, "/team/../other", "", strings.NewReader("x")))
}

func test_Delete(t *testing.T, driver kss.Driver) {
	ctx := context.Background()
	key := "/team/project/deleted"
	require.NoError(t, driver.Upload(ctx, key, "image/png", strings.NewReader("data")))
	require.NoError(t, driver.Delete(ctx, key))
	_, _, err := driver.Download(ctx, key)
	assert.Equal(t, kss.ErrNotFound, err)

	// deleting a missing key is not an error
	assert.NoError(t, driver.Delete(ctx, key))
}

func test_DeleteAllWithPrefix(t *testing.T, driver kss.Driver) {
	ctx := context.Background()
	keys := []string{"/team/a/1", "/team/a/2", "/team/b/1"}
	for _, key := range keys {
		require.NoError(t, driver.Upload(ctx, key, "", strings.NewReader(key)))
	}
	require.NoError(t, driver.DeleteAllWithPrefix(ctx, "/team/a"))

	for _, key := range keys[:2] {
		_, _, err := driver.Download(ctx, key)
		assert.Equal(t, kss.ErrNotFound, err)
	}
	data, _ := download(t, driver, "/team/b/1")
	assert.Equal(t, "/team/b/1", data)
}
