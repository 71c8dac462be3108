package prompts

import _ "embed"

// Embedded prompt files

//go:embed grounding_policy.txt
var groundingPolicy string

//go:embed grounding_header.txt
var groundingHeader string

// GroundingPolicy is the fixed rule block placed in every grounding context.
func GroundingPolicy() string { return groundingPolicy }

// GroundingHeader introduces the grounding context to the completion provider.
func GroundingHeader() string { return groundingHeader }
