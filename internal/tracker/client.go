// Package tracker implementa o cliente do serviço externo de rastreamento
// de pose, que resolve as articulações do esqueleto e entrega frames com
// coordenadas 3D em espaço do mundo.
package tracker

import (
	"bufio"
	"fmt"
	"net"
	"sync"
	"time"

	"fisiotrack_go/internal/models"
	"fisiotrack_go/pkg/logger"
)

const (
	dialTimeout  = 5 * time.Second
	readTimeout  = 2 * time.Second
	writeTimeout = 2 * time.Second

	// Comando de requisição de frame no protocolo do rastreador
	frameCommand = "GET pose_frame\n"
)

// Client gerencia a comunicação TCP com o rastreador de pose
type Client struct {
	conn          net.Conn
	reader        *bufio.Reader
	host          string
	port          int
	minConfidence float64
	connected     bool
	mutex         sync.Mutex
}

// NewClient cria uma nova instância do cliente do rastreador
func NewClient(host string, port int, minConfidence float64) *Client {
	return &Client{
		host:          host,
		port:          port,
		minConfidence: minConfidence,
	}
}

// Connect estabelece conexão com o rastreador
func (c *Client) Connect() error {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.connectLocked()
}

func (c *Client) connectLocked() error {
	if c.connected {
		return nil
	}

	addr := fmt.Sprintf("%s:%d", c.host, c.port)
	logger.Infof("Tentando conectar ao rastreador de pose em %s...", addr)

	conn, err := net.DialTimeout("tcp", addr, dialTimeout)
	if err != nil {
		return fmt.Errorf("erro ao conectar ao rastreador: %w", err)
	}

	c.conn = conn
	c.reader = bufio.NewReader(conn)
	c.connected = true
	logger.Infof("Conectado ao rastreador de pose em %s", addr)
	return nil
}

// RequestFrame solicita e decodifica o próximo frame de pose. Articulações
// abaixo do limiar de confiança são descartadas na decodificação.
func (c *Client) RequestFrame() (*models.PoseFrame, error) {
	payload, err := c.fetch()
	if err != nil {
		return nil, err
	}
	return DecodeFrame(payload, c.minConfidence)
}

// fetch envia o comando de frame e lê a resposta delimitada por nova linha
func (c *Client) fetch() ([]byte, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if !c.connected {
		if err := c.connectLocked(); err != nil {
			return nil, err
		}
	}

	c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if _, err := c.conn.Write([]byte(frameCommand)); err != nil {
		c.connected = false
		return nil, fmt.Errorf("erro ao enviar comando: %w", err)
	}

	c.conn.SetReadDeadline(time.Now().Add(readTimeout))
	line, err := c.reader.ReadBytes('\n')
	if err != nil {
		c.connected = false
		return nil, fmt.Errorf("erro ao ler resposta: %w", err)
	}

	return line, nil
}

// SetConnected define o estado de conexão
func (c *Client) SetConnected(connected bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.connected = connected
}

// IsConnected verifica se o cliente está conectado
func (c *Client) IsConnected() bool {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.connected
}

// Close fecha a conexão com o rastreador
func (c *Client) Close() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
		c.reader = nil
		c.connected = false
		logger.Info("Conexão com o rastreador fechada")
	}
}
