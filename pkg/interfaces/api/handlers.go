package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vsinha/acompreq/pkg/application/dto"
	"github.com/vsinha/acompreq/pkg/application/services"
	"github.com/vsinha/acompreq/pkg/domain/entities"
	domain "github.com/vsinha/acompreq/pkg/domain/services"
)

// DigestSummary describes one administrator digest without its body
type DigestSummary struct {
	Administrator  entities.AdministratorName `json:"administrator"`
	Address        string                     `json:"address,omitempty"`
	AddressMissing bool                       `json:"address_missing"`
	Requisitions   int                        `json:"requisitions"`
	Pending        int                        `json:"pending"`
	Fingerprint    string                     `json:"fingerprint"`
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) listRequisitions(c *gin.Context) {
	result, ok := s.run(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"run_id":         result.RunID,
		"as_of":          result.AsOf.Format(entities.DateLayout),
		"window":         result.Window,
		"summary":        result.Summary,
		"duplicates":     result.Duplicates,
		"requisitions":   result.Aggregates,
		"rejected_lines": result.Summary.RejectedLines,
	})
}

func (s *Server) listPendingLines(c *gin.Context) {
	result, ok := s.run(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"window": result.Window,
		"lines":  result.PendingLines,
	})
}

func (s *Server) listDigests(c *gin.Context) {
	result, ok := s.run(c)
	if !ok {
		return
	}

	summaries := make([]DigestSummary, 0, len(result.Administrators))
	for _, administrator := range result.Administrators {
		digest := result.Digests[administrator]
		summaries = append(summaries, DigestSummary{
			Administrator:  administrator,
			Address:        digest.Address,
			AddressMissing: digest.AddressMissing,
			Requisitions:   len(digest.Entries),
			Pending:        digest.PendingRequisitions(),
			Fingerprint:    digest.Fingerprint(),
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"window":          result.Window,
		"digests":         summaries,
		"missing_address": result.MissingAddress,
	})
}

func (s *Server) getDigest(c *gin.Context) {
	administrator := domain.NormalizeAdministratorName(c.Param("administrator"))
	if administrator.IsNull() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "administrator is required"})
		return
	}

	result, ok := s.run(c)
	if !ok {
		return
	}

	digest, found := result.Digest(administrator)
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("no digest for %s in %s", administrator, result.Window.Label)})
		return
	}

	c.Header("X-Digest-Fingerprint", digest.Fingerprint())
	c.String(http.StatusOK, digest.Render())
}

// run computes a fresh result, honoring ?as_of=YYYY-MM-DD. It writes the error response itself.
func (s *Server) run(c *gin.Context) (*dto.RunResult, bool) {
	now := s.clock()
	if asOf := c.Query("as_of"); asOf != "" {
		parsed, err := time.Parse(entities.DateLayout, asOf)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid as_of %q, expected YYYY-MM-DD", asOf)})
			return nil, false
		}
		now = parsed
	}

	result, err := s.tracker.Run(c.Request.Context(), services.RunRequest{Now: now})
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compute requisition status"})
		return nil, false
	}
	return result, true
}
