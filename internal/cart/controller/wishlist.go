package controller

import (
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	inErrors "github.com/edgestore/storefront/internal/errors"
	inHttp "github.com/edgestore/storefront/internal/http"
	"github.com/edgestore/storefront/internal/log"
	"github.com/edgestore/storefront/internal/otel"
	"github.com/edgestore/storefront/pkg/response"
)

func (t CartController) AddToWishlist(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "CartController AddToWishlist")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartController AddToWishlist").
		Logger()

	logger = logger.With().Str(log.KeyProcess, "resolving cart owner").Logger()
	logger.Info().Msg("resolving cart owner")
	owner, err := ownerFromRequest(r)
	if err != nil {
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": inHttp.StatusCodeFromError(err),
			"message":    err.Error(),
		})
		return
	}
	logger = logger.With().Str(log.KeyOwnerKey, string(owner)).Logger()
	logger.Info().Msgf("resolved cart owner=%s", owner)

	logger = logger.With().Str(log.KeyProcess, "validating productId").Logger()
	logger.Info().Msg("validating productId")
	productId, err := uuid.Parse(mux.Vars(r)["productId"])
	if err != nil {
		err = fmt.Errorf("failed validating productId with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusBadRequest,
			"message":    err.Error(),
		})
		return
	}
	logger = logger.With().Str(log.KeyProductID, productId.String()).Logger()
	logger.Info().Msgf("validated productId=%s", productId.String())

	logger = logger.With().Str(log.KeyProcess, "adding product to wishlist").Logger()
	logger.Info().Msg("adding product to wishlist")
	c = logger.WithContext(c)
	wishlist, err := t.service.AddToWishlist(c, owner, productId)
	if err != nil {
		err = fmt.Errorf("failed adding product to wishlist with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": inHttp.StatusCodeFromError(err),
			"message":    err.Error(),
		})
		return
	}
	logger.Info().Msg("added product to wishlist")

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    "successfully added product to wishlist",
		"data": map[string]interface{}{
			"wishlist": wishlist,
		},
	})
}

func (t CartController) RemoveFromWishlist(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "CartController RemoveFromWishlist")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartController RemoveFromWishlist").
		Logger()

	logger = logger.With().Str(log.KeyProcess, "resolving cart owner").Logger()
	logger.Info().Msg("resolving cart owner")
	owner, err := ownerFromRequest(r)
	if err != nil {
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": inHttp.StatusCodeFromError(err),
			"message":    err.Error(),
		})
		return
	}
	logger = logger.With().Str(log.KeyOwnerKey, string(owner)).Logger()
	logger.Info().Msgf("resolved cart owner=%s", owner)

	logger = logger.With().Str(log.KeyProcess, "validating productId").Logger()
	logger.Info().Msg("validating productId")
	productId, err := uuid.Parse(mux.Vars(r)["productId"])
	if err != nil {
		err = fmt.Errorf("failed validating productId with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusBadRequest,
			"message":    err.Error(),
		})
		return
	}
	logger = logger.With().Str(log.KeyProductID, productId.String()).Logger()
	logger.Info().Msgf("validated productId=%s", productId.String())

	logger = logger.With().Str(log.KeyProcess, "removing product from wishlist").Logger()
	logger.Info().Msg("removing product from wishlist")
	c = logger.WithContext(c)
	wishlist, err := t.service.RemoveFromWishlist(c, owner, productId)
	if err != nil {
		err = fmt.Errorf("failed removing product from wishlist with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": inHttp.StatusCodeFromError(err),
			"message":    err.Error(),
		})
		return
	}
	logger.Info().Msg("removed product from wishlist")

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    "successfully removed product from wishlist",
		"data": map[string]interface{}{
			"wishlist": wishlist,
		},
	})
}

func (t CartController) ListWishlist(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "CartController ListWishlist")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartController ListWishlist").
		Logger()

	logger = logger.With().Str(log.KeyProcess, "resolving cart owner").Logger()
	logger.Info().Msg("resolving cart owner")
	owner, err := ownerFromRequest(r)
	if err != nil {
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": inHttp.StatusCodeFromError(err),
			"message":    err.Error(),
		})
		return
	}
	logger = logger.With().Str(log.KeyOwnerKey, string(owner)).Logger()
	logger.Info().Msgf("resolved cart owner=%s", owner)

	logger = logger.With().Str(log.KeyProcess, "listing wishlist").Logger()
	logger.Info().Msg("listing wishlist")
	c = logger.WithContext(c)
	products, err := t.service.ListWishlist(c, owner)
	if err != nil {
		err = fmt.Errorf("failed listing wishlist with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": inHttp.StatusCodeFromError(err),
			"message":    err.Error(),
		})
		return
	}
	logger.Info().Msg("listed wishlist")

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    "successfully listed wishlist",
		"data": map[string]interface{}{
			"wishlist": response.NewProducts(products),
		},
	})
}
