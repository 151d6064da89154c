package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings" // 用于ToLower
	"sync"

	"github.com/bytedance/sonic"

	"github.com/WJQSERVER/gameaudio"
	"github.com/WJQSERVER/gameaudio/crihca"
	"github.com/WJQSERVER/gameaudio/dsp"
	"github.com/WJQSERVER/gameaudio/hca"
)

// global flags
var (
	keyFlag      *string
	keysFlag     *string
	headerFlag   *bool
	strictFlag   *bool
	verboseFlag  *bool
	parallelFlag *int
)

func init() {
	// 定义命令行参数
	keyFlag = flag.String("key", "", "指定 HCA 解密密钥 (十进制或 0x 开头的十六进制)")
	keysFlag = flag.String("keys", "", "指定 YAML 格式的候选密钥列表文件, 用于 ciph 类型 56")
	headerFlag = flag.Bool("header", false, "只读取头部, 不读取音频数据")
	strictFlag = flag.Bool("strict", false, "HCA 帧校验和不匹配时视为错误")
	verboseFlag = flag.Bool("verbose", false, "输出读取器的诊断日志")
	parallelFlag = flag.Int("p", runtime.NumCPU(), "指定并行处理的文件数量 (文件级并行)")

	// 自定义帮助信息
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "DSP/HCA 文件检查工具\n\n")
		fmt.Fprintf(os.Stderr, "用法: %s [选项] <文件1> [文件2] ...\n\n", filepath.Base(os.Args[0]))
		fmt.Fprintf(os.Stderr, "选项:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\n示例:\n")
		fmt.Fprintf(os.Stderr, "  %s song.hca voice.dsp\n", filepath.Base(os.Args[0]))
		fmt.Fprintf(os.Stderr, "  %s -keys keys.yaml -p 4 bgm/*.hca\n", filepath.Base(os.Args[0]))
	}
}

// report 是每个文件输出的 JSON 摘要.
type report struct {
	File          string `json:"file"`
	Codec         string `json:"codec"`
	SampleCount   int    `json:"sample_count"`
	SampleRate    int    `json:"sample_rate"`
	ChannelCount  int    `json:"channel_count"`
	Looping       bool   `json:"looping"`
	LoopStart     int    `json:"loop_start,omitempty"`
	LoopEnd       int    `json:"loop_end,omitempty"`
	FrameCount    int    `json:"frame_count,omitempty"`
	FrameSize     int    `json:"frame_size,omitempty"`
	Encryption    int    `json:"encryption_type,omitempty"`
	KeyCode       string `json:"key_code,omitempty"`
	BadChecksums  []int  `json:"bad_checksums,omitempty"`
	Comment       string `json:"comment,omitempty"`
	Interleave    int    `json:"frames_per_interleave,omitempty"`
	HeaderOnly    bool   `json:"header_only,omitempty"`
	HeaderVersion string `json:"hca_version,omitempty"`
}

func main() {
	log.SetFlags(0) // 不显示日期时间前缀
	flag.Parse()

	filesToProcess := flag.Args()
	if len(filesToProcess) == 0 {
		log.Println("错误: 请提供至少一个 DSP 或 HCA 文件。")
		flag.Usage()
		os.Exit(1)
	}

	finder, explicitKey, err := loadKeys()
	if err != nil {
		log.Fatalf("错误: %v", err)
	}

	numParallel := *parallelFlag
	if numParallel <= 0 {
		numParallel = 1 // 至少一个任务
	}
	if numParallel > len(filesToProcess) { // 并行数不需要超过文件数
		numParallel = len(filesToProcess)
	}

	var wg sync.WaitGroup
	semaphore := make(chan struct{}, numParallel) // 控制并发数量的信号量

	log.Printf("开始检查 %d 个文件，并行数: %d\n", len(filesToProcess), numParallel)

	for _, path := range filesToProcess {
		wg.Add(1)
		semaphore <- struct{}{} // 获取一个处理许可

		go func(inputFile string) {
			defer wg.Done()
			defer func() { <-semaphore }() // 释放许可

			processFile(inputFile, finder, explicitKey)
		}(path)
	}

	wg.Wait() // 等待所有文件处理完毕
	log.Println("所有检查任务完成。")
}

// loadKeys 读取 -key 和 -keys 参数. 列表中的密钥排在默认密钥之后尝试.
func loadKeys() (crihca.KeyFinder, *crihca.Key, error) {
	var explicit *crihca.Key
	if *keyFlag != "" {
		code, err := strconv.ParseUint(*keyFlag, 0, 64)
		if err != nil {
			return nil, nil, fmt.Errorf("无效的密钥 %q: %w", *keyFlag, err)
		}
		explicit = crihca.NewKey(code)
	}

	finder := crihca.KnownKeyFinder{Keys: []uint64{crihca.DefaultKeyCode}}
	if *keysFlag != "" {
		f, err := os.Open(*keysFlag)
		if err != nil {
			return nil, nil, fmt.Errorf("无法打开密钥列表: %w", err)
		}
		defer f.Close()

		list, err := crihca.LoadKeyList(f)
		if err != nil {
			return nil, nil, err
		}
		finder.Keys = append(finder.Keys, list.Finder().Keys...)
		log.Printf("已加载 %d 个候选密钥", len(list.Keys))
	}
	return finder, explicit, nil
}

func processFile(path string, finder crihca.KeyFinder, key *crihca.Key) {
	// 基本的文件有效性检查
	if _, err := os.Stat(path); os.IsNotExist(err) {
		log.Printf("错误: 文件不存在 %s", path)
		return
	}

	// 每个 goroutine 使用自己的读取器实例.
	var logger *log.Logger
	if *verboseFlag {
		logger = log.New(os.Stderr, filepath.Base(path)+": ", 0)
	}

	var (
		rep *report
		err error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".dsp":
		rep, err = inspectDSP(path, &dsp.Reader{Logger: logger})
	case ".hca":
		r := hca.NewReader()
		r.EncryptionKey = key
		r.KeyFinder = finder
		r.StrictCRC = *strictFlag
		r.Logger = logger
		rep, err = inspectHCA(path, r)
	default:
		log.Printf("跳过: %s (非 .dsp/.hca 文件)", path)
		return
	}
	if err != nil {
		log.Printf("读取失败: %s. 错误: %v", path, err)
		return
	}

	out, err := sonic.Marshal(rep)
	if err != nil {
		log.Printf("输出失败: %s. 错误: %v", path, err)
		return
	}
	fmt.Println(string(out))
}

func inspectDSP(path string, r *dsp.Reader) (*report, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	s, err := r.Read(f, !*headerFlag)
	if err != nil {
		return nil, err
	}
	rep := &report{
		File:         path,
		Codec:        gameaudio.CodecGcAdpcm.String(),
		SampleCount:  s.SampleCount,
		SampleRate:   s.SampleRate,
		ChannelCount: s.ChannelCount,
		Looping:      s.Looping,
		Interleave:   r.Configuration(s).FramesPerInterleave,
		HeaderOnly:   *headerFlag,
	}
	if s.Looping {
		rep.LoopStart, rep.LoopEnd = s.LoopStart(), s.LoopEnd()
	}
	if !*headerFlag {
		if _, err := r.Project(s); err != nil {
			return nil, err
		}
	}
	return rep, nil
}

func inspectHCA(path string, r *hca.Reader) (*report, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	s, err := r.Read(f, !*headerFlag)
	if err != nil {
		return nil, err
	}
	info := s.Info
	rep := &report{
		File:          path,
		Codec:         gameaudio.CodecCriHca.String(),
		SampleCount:   info.TrimmedSampleCount(),
		SampleRate:    info.SampleRate,
		ChannelCount:  info.ChannelCount,
		Looping:       info.Looping,
		FrameCount:    info.FrameCount,
		FrameSize:     info.FrameSize,
		Encryption:    info.EncryptionType,
		BadChecksums:  s.CRCMismatches,
		Comment:       info.Comment,
		HeaderOnly:    *headerFlag,
		HeaderVersion: fmt.Sprintf("%d.%d", info.Version>>8, info.Version&0xFF),
	}
	if info.Looping {
		rep.LoopStart, rep.LoopEnd = info.LoopStartSample(), info.LoopEndSample()
	}
	if k := r.Configuration(s).EncryptionKey; k != nil && k.KeyCode != 0 {
		rep.KeyCode = formatKeyCode(k.KeyCode)
	}
	if !*headerFlag {
		if _, err := r.Project(s); err != nil {
			return nil, err
		}
	}
	return rep, nil
}

// formatKeyCode 按固定 16 位十六进制输出密钥码, 保留前导 0.
func formatKeyCode(code uint64) string {
	return fmt.Sprintf("0x%016x", code)
}
