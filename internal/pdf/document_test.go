package pdf

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOpen_MissingFile(t *testing.T) {
	_, err := Open("/nonexistent/document.pdf")
	assert.Error(t, err)
}

func TestOpenBytes_InvalidData(t *testing.T) {
	_, err := OpenBytes([]byte("definitely not a pdf"))
	assert.Error(t, err)
}
