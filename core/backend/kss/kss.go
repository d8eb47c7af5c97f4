// Copyright 2021 Dalarub & Ettrich GmbH - All Rights Reserved
// Unauthorized copying of this file, via any medium is strictly prohibited
// Proprietary and confidential
// info@dalarub.com
//

// Package kss stores binary files attached to resources outside of the database.
// There are currently two possible backends: a local file system and AWS S3
package kss

import (
	"context"
	"errors"
	"io"
	"strings"
)

// ErrNotFound is returned by Download when no file is stored for a key
var ErrNotFound = errors.New("file not found")

// ErrInvalidKey is returned for keys which could escape the storage root
var ErrInvalidKey = errors.New("invalid key")

// Driver defines the interface for the KSS service. Keys are slash separated
// paths like /team/project/resource.
type Driver interface {
	Upload(ctx context.Context, key, contentType string, body io.Reader) error
	// Download returns the file content and its content type. The caller must
	// close the returned reader.
	Download(ctx context.Context, key string) (io.ReadCloser, string, error)
	Delete(ctx context.Context, key string) error
	DeleteAllWithPrefix(ctx context.Context, prefix string) error
}

// DriverType represents the different type of KSS Drivers
type DriverType string

// DriverTypeLocal is the local filesystem implementation of the KSS service
const DriverTypeLocal DriverType = "Local"

// DriverTypeAWSS3 is the AWS S3 implementation of the KSS service
const DriverTypeAWSS3 DriverType = "AWSS3"

// None is used when there is no KSS implementation
const None DriverType = ""

// Configuration contains the configuration for the KSS service
type Configuration struct {
	DriverType         DriverType
	LocalConfiguration *LocalConfiguration
	S3Configuration    *S3Configuration
}

// LocalConfiguration contains the configuration for the local filesystem KSS service
type LocalConfiguration struct {
	BasePath string
}

// New returns the driver selected by the configuration, or nil for None
func New(config Configuration) (Driver, error) {
	switch config.DriverType {
	case None:
		return nil, nil
	case DriverTypeLocal:
		if config.LocalConfiguration == nil {
			return nil, errors.New("missing local configuration")
		}
		return NewLocalFilesystem(*config.LocalConfiguration)
	case DriverTypeAWSS3:
		if config.S3Configuration == nil {
			return nil, errors.New("missing S3 configuration")
		}
		return NewS3(*config.S3Configuration)
	}
	return nil, errors.New("unknown kss driver " + string(config.DriverType))
}

func validKey(key string) bool {
	return key != "" && !strings.Contains(key, "..")
}
