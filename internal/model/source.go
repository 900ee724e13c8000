package model

// Source is a cited source surfaced on the result card
type Source struct {
	Title      string `json:"title"`
	URI        string `json:"uri"`
	IsOfficial bool   `json:"is_official"`
}

// AuthorityTier represents the classification of source authority
type AuthorityTier int

const (
	TierUnknown   AuthorityTier = 0 // Not yet classified
	TierPrimary   AuthorityTier = 1 // Government, courts, academic and official bodies
	TierSecondary AuthorityTier = 2 // Encyclopedias, agencies, established media
	TierTertiary  AuthorityTier = 3 // Blogs, social media, everything else
)

func (t AuthorityTier) String() string {
	switch t {
	case TierPrimary:
		return "primary"
	case TierSecondary:
		return "secondary"
	case TierTertiary:
		return "tertiary"
	default:
		return "unknown"
	}
}
