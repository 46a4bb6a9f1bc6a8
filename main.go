package main

import (
	"context"
	"flag"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	mgoutil "BetHub/data/database/mgo/mongoutil"
	"BetHub/global"
	"BetHub/logger"
	"BetHub/middleware"
	midsec "BetHub/middleware/security"
	"BetHub/module/invite"
	inviteservice "BetHub/module/invite/service"
	"BetHub/module/lobby"
	lobbyservice "BetHub/module/lobby/service"
	"BetHub/module/match"
	"BetHub/module/notify"
	notifyservice "BetHub/module/notify/service"
	"BetHub/module/user"
	userservice "BetHub/module/user/service"
	"BetHub/service/kafka"
	"BetHub/service/natsx"
	redis "BetHub/service/storage/redis"

	"github.com/gin-gonic/gin"
)

func main() {
	confPath := flag.String("conf", "", "JSON config file, defaults apply when empty")
	flag.Parse()

	if *confPath != "" {
		if err := global.LoadFile(*confPath); err != nil {
			logger.Errorf("load config %s failed: %v", *confPath, err)
			return
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	global.ConfigAll(ctx)
	defer func() {
		_ = natsx.StopNats()
		_ = kafka.CloseKafkaClient()
		_ = redis.CloseRedis()
		logger.Sync()
	}()

	middleware.ConfigAuth(midsec.DefaultOptions(global.GetJwtOptions()))

	// 组装业务：目录 → 大厅 → 通知 → 邀请
	dir := userservice.NewMongoDirectory()
	user.UseDirectory(dir)
	lobbySvc := lobbyservice.NewService(lobbyservice.NewMongoStore(), dir, match.NewMongoCreator())
	lobby.Init(lobbySvc)
	notifySvc := notifyservice.NewService(notifyservice.NewMongoStore())
	notify.Init(notifySvc)
	notify.StartFanoutBridge()
	invite.Init(inviteservice.NewService(inviteservice.NewMongoStore(), lobbySvc, dir, notifySvc))

	r := gin.New()
	r.Use(gin.Recovery())
	mgr := middleware.Manager()
	mgr.Add(middleware.Origin())
	r.Use(mgr.Use())

	r.GET("/health", func(c *gin.Context) {
		probeCtx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := mgoutil.Check(probeCtx, &global.Global.Mongo); err != nil {
			c.JSON(503, gin.H{"status": "degraded", "mongo": err.Error()})
			return
		}
		c.JSON(200, gin.H{"status": "ok"})
	})

	user.RegisterRoutes(r)
	lobby.RegisterRoutes(r)
	invite.RegisterRoutes(r)
	notify.RegisterRoutes(r)

	addr := fmt.Sprintf(":%d", global.Global.Port)
	logger.Infof("bethub api listening on %s", addr)
	if err := r.Run(addr); err != nil {
		logger.Errorf("http server exited: %v", err)
	}
}
