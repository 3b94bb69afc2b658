// Package logger fornece log nivelado com timestamp e origem, com saída
// opcional para arquivo além do terminal.
package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"
)

// Level representa o nível de log
type Level int

const (
	// DEBUG nível para mensagens detalhadas de depuração
	DEBUG Level = iota
	// INFO nível para informações gerais
	INFO
	// WARN nível para avisos
	WARN
	// ERROR nível para erros
	ERROR
	// FATAL nível para erros fatais (encerra o programa)
	FATAL
)

var (
	// Nível mínimo de log
	logLevel = INFO

	// Saídas de log
	logOutput   io.Writer = os.Stdout
	errorOutput io.Writer = os.Stderr
	logFile     io.WriteCloser
	errFile     io.WriteCloser

	// Formato de timestamp
	timeFormat = "2006-01-02 15:04:05.000"

	stdLogger *log.Logger
	errLogger *log.Logger

	// Mutex para operações de configuração
	mu sync.Mutex

	// Inicialização já realizada
	initialized = false
)

// Init inicializa o logger. O nível pode ser sobrescrito pela variável de
// ambiente FISIOTRACK_LOG_LEVEL (debug, info, warn, error).
func Init() {
	mu.Lock()
	defer mu.Unlock()

	if initialized {
		return
	}

	stdLogger = log.New(logOutput, "", 0)
	errLogger = log.New(errorOutput, "", 0)

	switch os.Getenv("FISIOTRACK_LOG_LEVEL") {
	case "debug":
		logLevel = DEBUG
	case "warn":
		logLevel = WARN
	case "error":
		logLevel = ERROR
	}

	initialized = true
}

// SetLevel define o nível mínimo de log
func SetLevel(level Level) {
	mu.Lock()
	defer mu.Unlock()
	logLevel = level
}

// GetLevel retorna o nível atual de log
func GetLevel() Level {
	mu.Lock()
	defer mu.Unlock()
	return logLevel
}

// IsDebugEnabled verifica se o nível de debug está habilitado
func IsDebugEnabled() bool {
	return GetLevel() <= DEBUG
}

// SetOutput define a saída para todos os logs
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()

	logOutput = w
	errorOutput = w
	stdLogger = log.New(w, "", 0)
	errLogger = log.New(w, "", 0)
}

// EnableFileLogging habilita o log para arquivo, mantendo a saída no
// terminal. Erros vão para um arquivo separado.
func EnableFileLogging(logDir, prefix string) error {
	mu.Lock()
	defer mu.Unlock()

	// Criar diretório, se não existir
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return fmt.Errorf("erro ao criar diretório de log: %w", err)
	}

	timestamp := time.Now().Format("20060102_150405")
	if prefix != "" {
		prefix = prefix + "_"
	}

	// Criar arquivo de log normal
	f, err := os.OpenFile(
		filepath.Join(logDir, fmt.Sprintf("%s%s.log", prefix, timestamp)),
		os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("erro ao criar arquivo de log: %w", err)
	}

	// Criar arquivo de log de erro
	ef, err := os.OpenFile(
		filepath.Join(logDir, fmt.Sprintf("%s%s_error.log", prefix, timestamp)),
		os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		f.Close()
		return fmt.Errorf("erro ao criar arquivo de log de erro: %w", err)
	}

	// Fechar arquivos anteriores, se existirem
	if logFile != nil {
		logFile.Close()
	}
	if errFile != nil {
		errFile.Close()
	}

	logFile = f
	errFile = ef

	stdLogger = log.New(io.MultiWriter(logOutput, f), "", 0)
	errLogger = log.New(io.MultiWriter(errorOutput, ef), "", 0)

	Info("Logging iniciado")
	return nil
}

// Sync fecha os arquivos de log abertos
func Sync() {
	mu.Lock()
	defer mu.Unlock()

	if logFile != nil {
		logFile.Close()
		logFile = nil
	}
	if errFile != nil {
		errFile.Close()
		errFile = nil
	}
}

// logMessage escreve uma mensagem de log com o nível especificado
func logMessage(level Level, format string, args ...interface{}) {
	if level < logLevel {
		return
	}

	timestamp := time.Now().Format(timeFormat)

	var prefix string
	switch level {
	case DEBUG:
		prefix = "DEBUG"
	case INFO:
		prefix = "INFO "
	case WARN:
		prefix = "WARN "
	case ERROR:
		prefix = "ERROR"
	case FATAL:
		prefix = "FATAL"
	}

	// Fonte do log (arquivo e linha)
	var source string
	if _, file, line, ok := runtime.Caller(2); ok {
		source = fmt.Sprintf(" [%s:%d]", filepath.Base(file), line)
	}

	// Formatar mensagem
	var msg string
	if len(args) == 0 {
		msg = format
	} else {
		msg = fmt.Sprintf(format, args...)
	}

	target := stdLogger
	if level >= ERROR {
		target = errLogger
	}

	if target == nil {
		// Logger ainda não inicializado: fallback para stderr
		fmt.Fprintf(os.Stderr, "[%s] %s%s: %s\n", timestamp, prefix, source, msg)
	} else {
		target.Printf("[%s] %s%s: %s", timestamp, prefix, source, msg)
	}

	// Se for FATAL, finalizar o programa
	if level == FATAL {
		panic(msg)
	}
}

// Debug escreve mensagem de log com nível DEBUG
func Debug(msg string) {
	logMessage(DEBUG, "%s", msg)
}

// Debugf escreve mensagem de log formatada com nível DEBUG
func Debugf(format string, args ...interface{}) {
	logMessage(DEBUG, format, args...)
}

// Info escreve mensagem de log com nível INFO
func Info(msg string) {
	logMessage(INFO, "%s", msg)
}

// Infof escreve mensagem de log formatada com nível INFO
func Infof(format string, args ...interface{}) {
	logMessage(INFO, format, args...)
}

// Warn escreve mensagem de log com nível WARN
func Warn(msg string) {
	logMessage(WARN, "%s", msg)
}

// Warnf escreve mensagem de log formatada com nível WARN
func Warnf(format string, args ...interface{}) {
	logMessage(WARN, format, args...)
}

// Error escreve mensagem de log com nível ERROR
func Error(msg string, err error) {
	if err != nil {
		logMessage(ERROR, "%s: %v", msg, err)
	} else {
		logMessage(ERROR, "%s", msg)
	}
}

// Errorf escreve mensagem de log formatada com nível ERROR
func Errorf(format string, args ...interface{}) {
	logMessage(ERROR, format, args...)
}

// Fatal escreve mensagem de log com nível FATAL e encerra o programa
func Fatal(msg string, err error) {
	if err != nil {
		logMessage(FATAL, "%s: %v", msg, err)
	} else {
		logMessage(FATAL, "%s", msg)
	}
}

// Fatalf escreve mensagem de log formatada com nível FATAL e encerra o programa
func Fatalf(format string, args ...interface{}) {
	logMessage(FATAL, format, args...)
}
