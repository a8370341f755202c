package handler

import (
	"deskhub/internal/app/agent"
	"deskhub/internal/app/messaging"
	"deskhub/internal/app/realtime"
	"deskhub/internal/app/storage"
	"deskhub/internal/configs"
	"deskhub/internal/pkg/pow"
)

// AppDeps bundles the shared application dependencies handed to every handler
// constructor.
type AppDeps struct {
	Config         *configs.AppConfig
	Hub            *realtime.Hub
	Dispatcher     *realtime.Dispatcher
	Messages       *messaging.Service
	Agents         *agent.Repo
	StorageService storage.StorageService
	Pow            *pow.PoWManager
}
