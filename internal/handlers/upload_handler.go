package handlers

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Максимальный размер загружаемого файла — 5 МБ
const maxUploadSize = 5 << 20

// Допустимые типы изображений
var allowedContentTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

// UploadFile принимает фотографию и сохраняет ее в каталоге загрузок.
// Тип и размер файла проверяются до записи на диск.
func UploadFile(c *gin.Context) {
	// Получаем файл из запроса
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Файл не найден"})
		return
	}

	if file.Size > maxUploadSize {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Файл больше 5 МБ"})
		return
	}

	contentType := file.Header.Get("Content-Type")
	if !allowedContentTypes[contentType] {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Допустимы только изображения JPEG, PNG и WebP"})
		return
	}

	// Создаем уникальное имя файла
	ext := filepath.Ext(file.Filename)
	newFileName := fmt.Sprintf("%s%s", uuid.New().String(), ext)

	// Фотографии складываются по датам внутри каталога maintenance-photos
	now := time.Now()
	dateDir := filepath.Join("uploads", "maintenance-photos", now.Format("2006/01/02"))
	if err := os.MkdirAll(dateDir, 0755); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при создании директории"})
		return
	}

	filePath := filepath.Join(dateDir, newFileName)

	// Сохраняем файл
	if err := c.SaveUploadedFile(file, filePath); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при сохранении файла"})
		return
	}

	// Возвращаем URL файла
	fileURL := fmt.Sprintf("/uploads/maintenance-photos/%s/%s", now.Format("2006/01/02"), newFileName)
	c.JSON(http.StatusOK, gin.H{
		"url": fileURL,
	})
}
