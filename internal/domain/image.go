package domain

import (
	"io"
	"time"
)

// Image описывает файл изображения товара для сохранения в хранилище
type Image struct {
	Name        string // имя файла в хранилище: <timestamp>-<исходное имя>
	Data        []byte
	Size        int64
	ContentType string
}

func NewImage(name string, data []byte, contentType string) *Image {
	return &Image{
		Name:        name,
		Data:        data,
		Size:        int64(len(data)),
		ContentType: contentType,
	}
}

// ImageObject — открытый для чтения файл изображения из хранилища.
type ImageObject struct {
	io.ReadSeekCloser
	Name        string
	ContentType string
	Size        int64
	ModTime     time.Time
}
