package main

import (
	"flag"
	"fmt"
	"log"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/palemoky/draw-and-guess/internal/logger"
	"github.com/palemoky/draw-and-guess/internal/ui"
)

func main() {
	serverAddr := flag.String("server", "localhost:1790", "服务器地址")
	flag.Parse()

	// 终端界面占用标准输出，日志写入文件
	if err := logger.InitFile(".draw-and-guess"); err != nil {
		log.Printf("初始化日志失败: %v", err)
	}
	defer logger.Close()

	serverURL := fmt.Sprintf("ws://%s/ws", *serverAddr)

	model := ui.NewOnlineModel(serverURL)

	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		if path := logger.GetLogPath(); path != "" {
			log.Fatalf("启动客户端时出错: %v（详细日志: %s）", err, path)
		}
		log.Fatalf("启动客户端时出错: %v", err)
	}
}
