package app

import (
	"errors"

	"github.com/bookstall/internal/config"
	"github.com/bookstall/internal/provider"
	"github.com/bookstall/internal/router"
	"github.com/bookstall/internal/worker"
)

// BuildRunner 构建服务运行器
func BuildRunner(cfg *config.Config, mode string) (*Runner, *provider.Container, error) {
	if cfg == nil {
		return nil, nil, errors.New("config is nil")
	}

	container := provider.NewContainer(cfg)

	var services []Service

	// 初始化 HTTP 服务
	if mode == ModeAll || mode == ModeAPI {
		engine := router.SetupRouter(cfg, container)
		addr := cfg.Server.Host + ":" + cfg.Server.Port
		httpService := NewHTTPService(addr, engine)
		services = append(services, httpService)
	}

	// 初始化 Worker 服务；队列未启用时 all 模式下只在进程内跑月报调度
	if mode == ModeAll || mode == ModeWorker {
		var scheduler *worker.MonthlyScheduler
		if cfg.Report.MonthlyScheduleEnabled {
			trigger := worker.DirectTrigger(container.ReportService)
			if container.QueueClient.Enabled() {
				trigger = worker.QueueTrigger(container.QueueClient)
			}
			scheduler = worker.NewMonthlyScheduler(cfg.Report.CheckIntervalMinutes, trigger)
		}

		if cfg.Queue.Enabled {
			consumer := worker.NewConsumer(container)
			workerService, err := worker.NewService(&cfg.Queue, consumer, scheduler)
			if err != nil {
				container.Close()
				return nil, nil, err
			}
			services = append(services, workerService)
		} else if mode == ModeWorker {
			container.Close()
			return nil, nil, errors.New("worker mode requires queue.enabled")
		} else if scheduler != nil {
			services = append(services, scheduler)
		}
	}

	if len(services) == 0 {
		container.Close()
		return nil, nil, errors.New("no services initialized (check mode and config)")
	}

	return NewRunner(services...), container, nil
}

// Run 应用启动入口
func Run(opts Options) error {
	opts = normalizeOptions(opts)
	if opts.Config == nil {
		return errors.New("config is nil")
	}

	runner, container, err := BuildRunner(opts.Config, opts.Mode)
	if err != nil {
		return err
	}
	defer container.Close()

	addr := opts.Config.Server.Host + ":" + opts.Config.Server.Port
	opts.Logger.Infow("app_start", "addr", addr, "mode", opts.Mode)
	return RunWithOptions(runner, opts)
}
