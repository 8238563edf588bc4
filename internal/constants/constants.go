package constants

const (
	AppStorefront = "storefront-service"
	AudienceShop  = "audience-shopper"
	IssuerAuth    = "auth-service"
)
