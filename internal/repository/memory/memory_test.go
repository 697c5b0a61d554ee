package memory_test

import (
	"testing"

	"github.com/sakif/blog-api/internal/repository"
	"github.com/sakif/blog-api/internal/repository/memory"
	"github.com/sakif/blog-api/internal/repository/repotest"
)

func TestStoreContract(t *testing.T) {
	repotest.Run(t, func(t *testing.T) repository.PostRepository {
		return memory.New()
	})
}
