package constants

const (
	ViewData           = "view_data"
	SubmitVerification = "submit_verification"
	ReviewVerification = "review_verification"
	ManageProducts     = "manage_products"
	DeliverEnhancement = "deliver_enhancement"
	ManageProfiles     = "manage_profiles"
)
