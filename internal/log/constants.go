package log

const (
	KeyAppName            = "app"
	KeyRequestID          = "requestId"
	KeyProcess            = "process"
	KeyTag                = "tag"
	KeyConfig             = "config"
	KeyToken              = "token"
	KeyRequestBody        = "requestBody"
	KeyRequestHeader      = "requestHeader"
	KeyRequestHost        = "host"
	KeyRequestIp          = "requesterIP"
	KeyRequestMethod      = "requestMethod"
	KeyRequestURI         = "requestURI"
	KeyRequestURL         = "requestURL"
	KeyOwnerKey           = "ownerKey"
	KeyAccountID          = "accountId"
	KeySessionID          = "sessionId"
	KeyProductID          = "productId"
	KeyOrderID            = "orderId"
	KeyReservationID      = "reservationId"
	KeyQuantity           = "quantity"
	KeyCart               = "cart"
	KeyCartItems          = "cartItems"
	KeyOrder              = "order"
	KeyOrders             = "orders"
	KeyOrderItems         = "orderItems"
	KeyProduct            = "product"
	KeyCategory           = "category"
	KeyCacheKey           = "cacheKey"
	KeyCheckoutState      = "checkoutState"
	KeyPathValues         = "pathValues"
	KeyWishlist           = "wishlist"
)
