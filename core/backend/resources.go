// Copyright 2021 Dalarub & Ettrich GmbH - All Rights Reserved
// Unauthorized copying of this file, via any medium is strictly prohibited
// Proprietary and confidential
// info@dalarub.com
//

package backend

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/gamemakerclub/api-core/core"
	"github.com/gamemakerclub/api-core/core/backend/kss"
	"github.com/gamemakerclub/api-core/core/logger"
	"github.com/gamemakerclub/api-core/core/resource"
	"github.com/gamemakerclub/api-core/core/schema"
)

// maxFileSize limits uploaded resource files
const maxFileSize = 50 * 1024 * 1024

func (b *Backend) listResources(w http.ResponseWriter, r *http.Request) {
	_, project, ok := b.myProject(w, r)
	if !ok {
		return
	}
	resources, err := b.db.ListResources(r.Context(), project.ID)
	if err != nil {
		b.internalError(w, r, "4740", err, "cannot list resources")
		return
	}
	response := make([]map[string]interface{}, 0, len(resources))
	for _, res := range resources {
		response = append(response, res.ToAPI())
	}
	writeJSON(w, http.StatusOK, response)
}

// createResource instantiates the variant named by the type property. Unknown
// types are rejected with http.StatusBadRequest.
func (b *Backend) createResource(w http.ResponseWriter, r *http.Request) {
	user, project, ok := b.myProject(w, r)
	if !ok {
		return
	}
	body, ok := readBody(w, r)
	if !ok {
		return
	}
	t, _ := body["type"].(string)
	res, err := resource.New(t)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "this would not get created ("+err.Error()+")")
		return
	}
	if !b.validate(w, body, schema.ResourceID(t)) {
		return
	}

	res.FromAPIPost(body)
	meta := res.Meta()
	meta.ID = uuid.New()
	meta.UserID = user.ID
	meta.TeamID = project.TeamID
	meta.ProjectID = project.ID
	meta.Stamp(b.now())

	if err = b.db.CreateResource(r.Context(), res); err != nil {
		b.storeError(w, r, "4741", err, "project")
		return
	}
	logger.FromContext(r.Context()).Infof("created %s %s", t, meta.ID)
	response := res.ToAPI()
	b.notify(r, "resource", core.OperationCreate, response)
	writeJSON(w, http.StatusCreated, response)
}

// myResource returns the resource of the route, which must belong to a project
// of the user's team
func (b *Backend) myResource(w http.ResponseWriter, r *http.Request) (resource.Resource, bool) {
	_, project, ok := b.myProject(w, r)
	if !ok {
		return nil, false
	}
	resourceID, ok := pathID(w, r, "resource_id")
	if !ok {
		return nil, false
	}
	res, err := b.db.GetResource(r.Context(), project.ID, resourceID)
	if err != nil {
		b.storeError(w, r, "4742", err, "resource")
		return nil, false
	}
	return res, true
}

func (b *Backend) getResource(w http.ResponseWriter, r *http.Request) {
	res, ok := b.myResource(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, res.ToAPI())
}

func (b *Backend) patchResource(w http.ResponseWriter, r *http.Request) {
	res, ok := b.myResource(w, r)
	if !ok {
		return
	}
	body, ok := readBody(w, r)
	if !ok || !b.validate(w, body, schema.ResourceID(string(res.Type()))) {
		return
	}
	res.FromAPIPatch(body)
	res.Meta().Stamp(b.now())
	if err := b.db.UpdateResource(r.Context(), res); err != nil {
		b.storeError(w, r, "4743", err, "resource")
		return
	}
	response := res.ToAPI()
	b.notify(r, "resource", core.OperationUpdate, response)
	writeJSON(w, http.StatusOK, response)
}

func (b *Backend) deleteResource(w http.ResponseWriter, r *http.Request) {
	res, ok := b.myResource(w, r)
	if !ok {
		return
	}
	meta := res.Meta()
	if err := b.db.DeleteResource(r.Context(), meta.ProjectID, meta.ID); err != nil {
		b.storeError(w, r, "4744", err, "resource")
		return
	}
	if b.kssDriver != nil {
		if err := b.kssDriver.Delete(r.Context(), meta.Key()); err != nil {
			logger.FromContext(r.Context()).WithError(err).Errorf("Error 4745: cannot delete file %s", meta.Key())
		}
	}
	b.notify(r, "resource", core.OperationDelete, res.ToAPI())
	w.WriteHeader(http.StatusNoContent)
}

// fileResource returns the resource of the route if it can carry a file
func (b *Backend) fileResource(w http.ResponseWriter, r *http.Request) (resource.Resource, bool) {
	if b.kssDriver == nil {
		writeMessage(w, http.StatusNotImplemented, "file storage is not configured")
		return nil, false
	}
	res, ok := b.myResource(w, r)
	if !ok {
		return nil, false
	}
	switch res.Type() {
	case resource.TypeImage, resource.TypeSound:
		return res, true
	}
	writeMessage(w, http.StatusBadRequest, "resources of type "+string(res.Type())+" have no file")
	return nil, false
}

// putResourceFile stores the request body as the file of an image or sound
// resource and sets the resource extension from the content type
func (b *Backend) putResourceFile(w http.ResponseWriter, r *http.Request) {
	res, ok := b.fileResource(w, r)
	if !ok {
		return
	}
	contentType := r.Header.Get("Content-Type")
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		writeMessage(w, http.StatusUnsupportedMediaType, "missing or invalid content type")
		return
	}
	extension, ok := fileExtension(res.Type(), mediaType)
	if !ok {
		writeMessage(w, http.StatusUnsupportedMediaType, "content type "+mediaType+" does not fit a "+string(res.Type()))
		return
	}

	meta := res.Meta()
	body := http.MaxBytesReader(w, r.Body, maxFileSize)
	if err = b.kssDriver.Upload(r.Context(), meta.Key(), mediaType, body); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeMessage(w, http.StatusRequestEntityTooLarge, "file too large")
			return
		}
		b.internalError(w, r, "4746", err, "cannot upload file")
		return
	}

	res.FromAPIPatch(map[string]interface{}{"extension": extension})
	meta.Stamp(b.now())
	if err = b.db.UpdateResource(r.Context(), res); err != nil {
		b.storeError(w, r, "4747", err, "resource")
		return
	}
	b.notify(r, "resource", core.OperationUpdate, res.ToAPI())
	w.WriteHeader(http.StatusNoContent)
}

func (b *Backend) getResourceFile(w http.ResponseWriter, r *http.Request) {
	res, ok := b.fileResource(w, r)
	if !ok {
		return
	}
	file, contentType, err := b.kssDriver.Download(r.Context(), res.Meta().Key())
	if err == kss.ErrNotFound {
		writeMessage(w, http.StatusNotFound, "file not found")
		return
	}
	if err != nil {
		b.internalError(w, r, "4748", err, "cannot download file")
		return
	}
	defer file.Close()
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	if _, err = io.Copy(w, file); err != nil {
		logger.FromContext(r.Context()).WithError(err).Errorf("Error 4749: cannot send file %s", res.Meta().Key())
	}
}

// well known extensions, mime.ExtensionsByType is ambiguous for these
var extensions = map[string]string{
	"image/png":  "png",
	"image/jpeg": "jpg",
	"image/gif":  "gif",
	"audio/mpeg": "mp3",
	"audio/wav":  "wav",
	"audio/ogg":  "ogg",
}

// fileExtension returns the file extension for mediaType, which must be an
// image type for images and an audio type for sounds
func fileExtension(t resource.Type, mediaType string) (string, bool) {
	prefix := "image/"
	if t == resource.TypeSound {
		prefix = "audio/"
	}
	if !strings.HasPrefix(mediaType, prefix) {
		return "", false
	}
	if extension, ok := extensions[mediaType]; ok {
		return extension, true
	}
	if known, _ := mime.ExtensionsByType(mediaType); len(known) > 0 {
		return strings.TrimPrefix(known[0], "."), true
	}
	return strings.TrimPrefix(mediaType, prefix), true
}
