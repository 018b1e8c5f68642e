package security

import (
	"claimflow/bizerror"
	"claimflow/domain/actor"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
)

// Headers placed by the upstream gateway once it has authenticated the caller.
const (
	HeaderActorID   = "X-Actor-Id"
	HeaderActorRole = "X-Actor-Role"

	KeyActing = "Acting"
)

func FindActing(ctx *gin.Context) *actor.Acting {
	value, found := ctx.Get(KeyActing)
	if !found {
		return nil
	}
	acting, ok := value.(*actor.Acting)
	if !ok || acting.ID == 0 {
		return nil
	}
	return acting
}

func SaveActing(ctx *gin.Context, acting *actor.Acting) {
	if acting != nil && acting.ID != 0 {
		ctx.Set(KeyActing, acting)
	}
}

// ActingFilter reads the acting actor from the gateway headers, requests without a valid actor are unauthenticated.
func ActingFilter() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		id, err := types.ParseID(ctx.GetHeader(HeaderActorID))
		if err != nil || id == 0 {
			panic(bizerror.ErrUnauthenticated)
		}
		role, ok := actor.ParseRole(ctx.GetHeader(HeaderActorRole))
		if !ok {
			panic(bizerror.ErrUnauthenticated)
		}
		SaveActing(ctx, &actor.Acting{ID: id, Role: role})
		ctx.Next()
	}
}

// MustFindActing returns the acting actor saved by ActingFilter.
func MustFindActing(ctx *gin.Context) actor.Acting {
	acting := FindActing(ctx)
	if acting == nil {
		panic(bizerror.ErrUnauthenticated)
	}
	return *acting
}
