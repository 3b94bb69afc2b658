package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"fisiotrack_go/internal/config"
	"fisiotrack_go/internal/server"
	"fisiotrack_go/pkg/logger"
	"fisiotrack_go/pkg/utils"
)

func main() {
	// Configurar diretório de logs
	logDir := filepath.Join(".", "logs")
	os.MkdirAll(logDir, 0755)

	// Inicializar logger
	logger.Init()
	logger.EnableFileLogging(logDir, "fisiotrack")
	defer logger.Sync()

	// Exibir banner de inicialização
	displayBanner()

	logger.Info("Iniciando FisioTrack Motion Server")

	// Carregar configurações
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Erro ao carregar configurações", err)
	}

	// O rastreador entrega ~30 fps; amostrar mais devagar que isso degrada
	// a detecção de passagens breves pela faixa alvo
	if cfg.Tracker.SampleRate > 100*time.Millisecond {
		logger.Warn("Taxa de amostragem muito baixa. Definindo para 100ms (10Hz)")
		cfg.Tracker.SampleRate = 100 * time.Millisecond
	}

	logger.Infof("Configuração carregada: rastreador em %s:%d, Redis em %s:%d",
		cfg.Tracker.Host, cfg.Tracker.Port, cfg.Redis.Host, cfg.Redis.Port)
	logger.Infof("Taxa de amostragem: %v, janela de suavização: %d, hold padrão: %s",
		cfg.Tracker.SampleRate, cfg.Session.SmoothingWindow,
		utils.FormatDuration(cfg.Session.DefaultHoldTime))

	// Criar e iniciar o servidor
	srv, err := server.NewServer(cfg)
	if err != nil {
		logger.Fatal("Erro ao criar servidor", err)
	}

	// Iniciar o servidor em uma goroutine separada
	go func() {
		logger.Infof("Servidor iniciado na porta %d", cfg.Server.Port)
		if err := srv.Start(); err != nil {
			logger.Fatal("Erro ao iniciar o servidor", err)
		}
	}()

	// Configurar captura de sinais para shutdown gracioso
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Desligando servidor...")

	// Criar contexto com timeout para o shutdown
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	// Desligar o servidor
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Erro durante o shutdown do servidor", err)
	}

	logger.Info("Servidor encerrado com sucesso")
}

// displayBanner exibe um banner de inicialização
func displayBanner() {
	banner := `
 _______ _____ _______ _____  _____  _______  ______ _______ _______ _     _
 |______   |   |______   |   |     |    |    |_____/ |_____| |       |____/
 |       __|__ ______| __|__ |_____|    |    |    \_ |     | |_____  |    \_

                                            MOTION TRACKING SERVER  v1.0
 `
	fmt.Println(banner)
	fmt.Printf("Iniciando em %s\n\n", utils.FormatDateTime(time.Now()))
}
