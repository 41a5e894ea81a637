package handler

import (
	"roomchat/internal/app/chat"
	"roomchat/internal/app/user"
	"roomchat/internal/configs"
)

type AppDeps struct {
	Manager *chat.Manager
	Names   *user.Registry
	Config  *configs.AppConfig
}
