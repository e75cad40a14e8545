package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"pantauharga/internal/config"
	"pantauharga/internal/server"
	"pantauharga/internal/util"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Menjalankan dasbor web (perintah bawaan)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command) error {
	fmt.Println("==========================================")
	fmt.Println("  Pantau Harga - Dasbor Harga Komoditas")
	fmt.Println("==========================================")

	dash, st, err := openDashboard(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	fmt.Printf("Direktori data: %s\n", config.DataDir(cfg))
	if err := dash.CheckSource(); err != nil {
		zap.L().Warn("source workbook missing", zap.String("path", dash.Source().Path()))
	}

	srv, err := server.NewServer(dash, server.Options{
		DevMode:   cfg.Server.DevMode,
		ExportDir: config.ExportDir(cfg),
	})
	if err != nil {
		return err
	}

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	url := fmt.Sprintf("http://localhost:%d", cfg.Server.Port)

	errCh := make(chan error, 1)
	go func() {
		zap.L().Info("server listening", zap.Int("port", cfg.Server.Port))
		errCh <- srv.Run(addr)
	}()

	if !cfg.Server.DevMode && cfg.Server.OpenBrowser {
		fmt.Printf("Membuka browser: %s\n", url)
		if err := util.OpenBrowserWithFallback(url); err != nil {
			fmt.Printf("Browser tidak dapat dibuka otomatis, silakan buka: %s\n", url)
		}
	} else {
		fmt.Printf("Silakan buka %s\n", url)
	}

	fmt.Println("\nTekan Ctrl+C untuk berhenti...")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		if err != nil {
			return eris.Wrap(err, "server stopped")
		}
		return nil
	case <-quit:
	}

	fmt.Println("\nMenghentikan layanan...")
	ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}
