package merge

import (
	"github.com/google/uuid"
	"github.com/mitchellh/hashstructure/v2"

	"github.com/julianstephens/cadence/internal/models"
)

// attachmentContent is the identity-free portion of an attachment, hashed to
// de-duplicate legacy items that were imported without a reliable id.
type attachmentContent struct {
	Kind models.AttachmentKind
	Ref  string
}

func contentHash(a models.Attachment) uint64 {
	h, err := hashstructure.Hash(attachmentContent{Kind: a.Kind, Ref: a.Ref}, hashstructure.FormatV2, nil)
	if err != nil {
		// Hashing a flat struct of strings cannot fail; fall back to keeping
		// the item rather than dropping user data.
		return 0
	}
	return h
}

// unionAttachments unions two attachment collections keyed by item identity.
// When the same identity exists on both sides with different content, the
// item with the later creation timestamp wins. A content-hash pass then
// removes accidental duplicates among legacy items that lack an id.
func unionAttachments(local, remote []models.Attachment) []models.Attachment {
	if len(local) == 0 && len(remote) == 0 {
		return nil
	}

	byID := make(map[uuid.UUID]int)
	out := make([]models.Attachment, 0, len(local)+len(remote))

	add := func(a models.Attachment) {
		if a.ID == uuid.Nil {
			out = append(out, a)
			return
		}
		if i, ok := byID[a.ID]; ok {
			if a.CreatedAt.After(out[i].CreatedAt) {
				out[i] = a
			}
			return
		}
		byID[a.ID] = len(out)
		out = append(out, a)
	}

	for _, a := range local {
		add(a)
	}
	for _, a := range remote {
		add(a)
	}

	// De-duplicate legacy no-identity items by content hash. Items with a
	// real id are kept regardless: identity already de-duplicated them. A
	// legacy item whose content matches an id-bearing item is dropped too.
	seen := make(map[uint64]bool)
	for _, a := range out {
		if a.ID != uuid.Nil {
			seen[contentHash(a)] = true
		}
	}
	deduped := out[:0]
	for _, a := range out {
		if a.ID != uuid.Nil {
			deduped = append(deduped, a)
			continue
		}
		h := contentHash(a)
		if h != 0 && seen[h] {
			continue
		}
		seen[h] = true
		deduped = append(deduped, a)
	}
	return deduped
}
