package models

// PaginationMetadata describes one page of a client-side paginated list.
// ShowingStart and ShowingEnd are 1-based and both zero for an empty list.
type PaginationMetadata struct {
	Page         int  `json:"page"`
	Limit        int  `json:"limit"`
	TotalCount   int  `json:"total_count"`
	TotalPages   int  `json:"total_pages"`
	HasNext      bool `json:"has_next"`
	HasPrev      bool `json:"has_prev"`
	ShowingStart int  `json:"showing_start"`
	ShowingEnd   int  `json:"showing_end"`
}

// Paginate clamps page into range and returns the metadata together with the
// [start, end) slice bounds.
func Paginate(total, page, limit int) (meta PaginationMetadata, start, end int) {
	if limit < 1 {
		limit = 1
	}
	totalPages := (total + limit - 1) / limit
	if page < 1 {
		page = 1
	}
	if totalPages > 0 && page > totalPages {
		page = totalPages
	}

	start = (page - 1) * limit
	end = start + limit
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}

	meta = PaginationMetadata{
		Page:       page,
		Limit:      limit,
		TotalCount: total,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
		HasPrev:    page > 1,
	}
	if total > 0 {
		meta.ShowingStart = start + 1
		meta.ShowingEnd = end
	}
	return meta, start, end
}
