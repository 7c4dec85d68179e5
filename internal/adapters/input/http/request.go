package http

type (
	// CustomBuildRequest struct - either perk ids or exact titles
	CustomBuildRequest struct {
		PerkIDs []string `json:"perk_ids" validate:"required_without=Titles,omitempty,dive,required"`
		Titles  []string `json:"titles" validate:"required_without=PerkIDs,omitempty,dive,required"`
	}

	// ResultRequest struct - empty PerkIDs registers against the live build.
	// A BuildID rejects the result once that build was replaced.
	ResultRequest struct {
		Won     *bool    `json:"won" validate:"required"`
		PerkIDs []string `json:"perk_ids" validate:"omitempty,dive,required"`
		BuildID string   `json:"build_id" validate:"excluded_with=PerkIDs,max=32"`
	}

	// EvictIdleQuery struct - idle is a Go duration such as 30m
	EvictIdleQuery struct {
		Idle string `query:"idle" validate:"required"`
	}

	// BlacklistRequest struct
	BlacklistRequest struct {
		PerkID string `json:"perk_id" validate:"required,max=64"`
	}

	// MessageRefRequest struct
	MessageRefRequest struct {
		Ref string `json:"ref" validate:"required,max=256"`
	}

	// UsageQuery struct
	UsageQuery struct {
		UserID  string `query:"user_id" validate:"omitempty,max=64"`
		Outcome string `query:"outcome" validate:"omitempty,oneof=win loss"`
		Period  string `query:"period" validate:"omitempty,oneof=all month year"`
		Order   string `query:"order" validate:"omitempty,oneof=most least"`
		Limit   int    `query:"limit" validate:"gte=0,lte=100"`
	}
)
