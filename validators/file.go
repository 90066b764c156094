package validators

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"

	"storeit/backend/model"

	"github.com/gabriel-vasile/mimetype"
	"github.com/spf13/viper"
	"gorm.io/gorm"
)

var (
	ErrFileTooLarge    = errors.New("file too large")
	ErrFileNameTooLong = errors.New("file name is too long")
	ErrNoFile          = errors.New("no file provided")
	ErrNoSpace         = errors.New("not enough space")
)

const maxFileNameSize = 255

// FileValidator checks an incoming upload against size, name and quota
// limits and sniffs the real content type from the bytes rather than
// trusting the client header. Returns the opened file rewound to the
// start and the detected mime type
func FileValidator(fh *multipart.FileHeader, db *gorm.DB, ownerID string) (int, multipart.File, string, error) {
	if fh == nil {
		return http.StatusBadRequest, nil, "", ErrNoFile
	}

	if len(fh.Filename) > maxFileNameSize {
		return http.StatusBadRequest, nil, "", ErrFileNameTooLong
	}

	maxFileSize := viper.GetInt64("upload.max_size")
	if fh.Size > maxFileSize {
		return http.StatusRequestEntityTooLarge, nil, "", ErrFileTooLarge
	}

	if db != nil {
		var usedSpace int64
		err := db.
			Model(model.File{}).
			Where("owner_id = ?", ownerID).
			Select("COALESCE(SUM(size), 0)").
			Find(&usedSpace).
			Error
		if err != nil {
			return http.StatusInternalServerError, nil, "", err
		}

		if usedSpace+fh.Size > viper.GetInt64("storage.max_usage") {
			return http.StatusConflict, nil, "", ErrNoSpace
		}
	}

	f, err := fh.Open()
	if err != nil {
		return http.StatusInternalServerError, nil, "", err
	}

	mime, err := mimetype.DetectReader(f)
	if err != nil {
		return http.StatusInternalServerError, nil, "", err
	}

	// Reject bodies that are bigger than the declared size claims
	_, err = f.Seek(maxFileSize+1, io.SeekStart)
	if err != nil {
		return http.StatusInternalServerError, nil, "", err
	}

	buf := make([]byte, 1)
	n, err := f.Read(buf)
	if err != nil && err != io.EOF {
		return http.StatusInternalServerError, nil, "", err
	}

	if n > 0 {
		return http.StatusRequestEntityTooLarge, nil, "", ErrFileTooLarge
	}

	f.Seek(0, io.SeekStart)

	return 0, f, mime.String(), nil
}
