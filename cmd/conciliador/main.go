package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ordersync/internal/config"
	"ordersync/internal/dto"
	"ordersync/internal/infra"
	"ordersync/internal/model"
	"ordersync/internal/repository"
	"ordersync/internal/service"
	"ordersync/internal/worker"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// conciliador is the batch entry point of the reconciliation core. The HTTP
// application that serves quotes and orders is a separate deployable; it
// talks to the same database and triggers this binary (or its services) on
// list-import events.
func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	var (
		fornecedor = flag.String("fornecedor", "", "concilia um grupo; exige -lista")
		lista      = flag.String("lista", "", "tipo de lista do grupo (ex: INSUMOS, PET)")
		todos      = flag.Bool("todos", false, "concilia todos os grupos com lote ativo")
		importar   = flag.String("importar", "", "registra um lote a partir de um arquivo JSON e concilia")
		duplicados = flag.Bool("duplicados", false, "executa o passe de resolução de duplicados")
		catalogo   = flag.String("catalogo", "", "lista o catálogo ativo de um tipo de lista")
		aplicar    = flag.Bool("aplicar", false, "com -duplicados: aplica as demoções (senão, dry-run)")
		daemon     = flag.Bool("daemon", false, "mantém o processo vivo com o worker pool e o retry cron")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}

	// Redis only backs the async tax-bootstrap retry. Batch modes still work
	// without it — the retry cron repairs anything the queue would have.
	var rdb *redis.Client
	if rdb, err = infra.NewRedis(cfg.RedisURL); err != nil {
		if *daemon {
			log.Fatal().Err(err).Msg("failed to connect to redis")
		}
		log.Warn().Err(err).Msg("redis unavailable, tax bootstrap falls back to the retry cron")
		rdb = nil
	}

	linhaRepo := repository.NewLinhaListaRepository(db)
	familiaRepo := repository.NewFamiliaRepository(db)
	produtoRepo := repository.NewProdutoRepository(db)
	tributoRepo := repository.NewTributoRepository(db)

	var dispatcher *worker.Dispatcher
	if rdb != nil {
		dispatcher = worker.NewDispatcher(rdb)
	}

	familias := service.NewFamiliaService(familiaRepo, cfg.FamiliaIDStep)
	tributos := service.NewTributoService(tributoRepo)
	conciliacao := service.NewConciliacaoService(linhaRepo, produtoRepo, familias, tributos, dispatcher)
	importacao := service.NewImportacaoService(linhaRepo, conciliacao)
	dups := service.NewDuplicadosService(produtoRepo, cfg.FornecedorCanonico)
	consulta := service.NewCatalogoService(produtoRepo, familiaRepo)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	switch {
	case *importar != "":
		data, err := os.ReadFile(*importar)
		if err != nil {
			log.Fatal().Err(err).Str("arquivo", *importar).Msg("failed to read batch file")
		}
		var req dto.RegistrarLoteRequest
		if err := json.Unmarshal(data, &req); err != nil {
			log.Fatal().Err(err).Str("arquivo", *importar).Msg("invalid batch file")
		}
		resumo, err := importacao.RegistrarLote(ctx, req)
		if err != nil {
			log.Fatal().Err(err).Msg("lote rejeitado")
		}
		imprimir(resumo)

	case *fornecedor != "" && *lista != "":
		resumo, err := conciliacao.Conciliar(ctx, *fornecedor, *lista)
		if err != nil {
			log.Fatal().Err(err).Msg("conciliação falhou")
		}
		imprimir(resumo)

	case *todos:
		resultados, err := conciliacao.ConciliarTodos(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("conciliação em lote falhou")
		}
		imprimir(resultados)

	case *duplicados:
		relatorios, err := dups.Resolver(ctx, !*aplicar)
		if err != nil {
			log.Fatal().Err(err).Msg("resolução de duplicados falhou")
		}
		imprimir(relatorios)

	case *catalogo != "":
		produtos, err := consulta.ListarPorTipo(ctx, *catalogo, model.StatusAtivo)
		if err != nil {
			log.Fatal().Err(err).Msg("consulta ao catálogo falhou")
		}
		imprimir(produtos)

	case *daemon:
		worker.StartWorkerPool(ctx, rdb, tributos, cfg.WorkerPoolSize)
		worker.StartRetryCron(ctx, worker.RetryCronConfig{
			ProdutoRepo: produtoRepo,
			Tributos:    tributos,
		})

		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		log.Info().Msg("shutting down…")
		cancel()
		time.Sleep(time.Second) // let workers notice the cancelled context

	default:
		flag.Usage()
		os.Exit(2)
	}
}

func imprimir(v interface{}) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		log.Error().Err(err).Msg("failed to encode output")
	}
}
