// Copyright 2025 BayesNet ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Command bayesnet trains a variational Bayesian MLP classifier on MNIST
// and certifies its risk with a PAC-Bayes bound.
//
// Usage:
//
//	bayesnet -data ./mnist -device cpu -epochs 5
//	bayesnet -csv train.csv -device gpu -oracle
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/bayesnet-ml/bayesnet/autodiff"
	"github.com/bayesnet-ml/bayesnet/backend/cpu"
	"github.com/bayesnet-ml/bayesnet/backend/webgpu"
	"github.com/bayesnet-ml/bayesnet/bayes"
	"github.com/bayesnet-ml/bayesnet/data"
	"github.com/bayesnet-ml/bayesnet/nn"
	"github.com/bayesnet-ml/bayesnet/optim"
	"github.com/bayesnet-ml/bayesnet/tensor"
)

type config struct {
	dataDir string
	csvPath string
	device  string

	epochs     int
	batchSize  int
	hidden     int
	numSamples int
	maxTrain   int

	lr         float64
	priorSigma float64
	initSigma  float64
	threshold  float64
	delta      float64
	normalize  bool
	oracle     bool

	seed uint64
}

func main() {
	var cfg config
	flag.StringVar(&cfg.dataDir, "data", "", "directory with MNIST IDX files")
	flag.StringVar(&cfg.csvPath, "csv", "", "Kaggle-style CSV dataset (alternative to -data)")
	flag.StringVar(&cfg.device, "device", "cpu", "compute device: cpu or gpu")
	flag.IntVar(&cfg.epochs, "epochs", 5, "training epochs")
	flag.IntVar(&cfg.batchSize, "batch", 128, "batch size")
	flag.IntVar(&cfg.hidden, "hidden", 100, "hidden layer width")
	flag.IntVar(&cfg.numSamples, "samples", 1, "Monte Carlo samples per training step")
	flag.IntVar(&cfg.maxTrain, "max-train", 0, "cap on training examples (0 = all)")
	flag.Float64Var(&cfg.lr, "lr", 1e-3, "learning rate")
	flag.Float64Var(&cfg.priorSigma, "prior-sigma", 0.03, "prior standard deviation")
	flag.Float64Var(&cfg.initSigma, "init-sigma", 0.01, "initial posterior standard deviation")
	flag.Float64Var(&cfg.threshold, "threshold", 1e-4, "surrogate probability clamp")
	flag.Float64Var(&cfg.delta, "delta", 0.025, "bound confidence parameter")
	flag.BoolVar(&cfg.normalize, "normalize", true, "normalize surrogate by log(classes)")
	flag.BoolVar(&cfg.oracle, "oracle", false, "use the oracle prior variance KL")
	var seed int64
	flag.Int64Var(&seed, "seed", 42, "random seed")
	flag.Parse()
	cfg.seed = uint64(seed) //nolint:gosec // G115: seed reinterpretation is intentional

	if cfg.dataDir == "" && cfg.csvPath == "" {
		fmt.Fprintln(os.Stderr, "either -data or -csv is required")
		flag.Usage()
		os.Exit(2)
	}

	if err := run(cfg); err != nil {
		log.Fatal(err)
	}
}

func run(cfg config) error {
	train, test, err := loadDatasets(cfg)
	if err != nil {
		return err
	}
	log.Printf("loaded %d train / %d test examples, %d features",
		train.NumExamples(), test.NumExamples(), train.NumFeatures)

	if cfg.device == "gpu" {
		gpu, gerr := webgpu.New()
		if gerr != nil {
			log.Printf("webgpu unavailable (%v), falling back to cpu", gerr)
		} else {
			defer gpu.Release()
			return trainAndCertify(autodiff.New(gpu), cfg, train, test)
		}
	}
	return trainAndCertify(autodiff.New(cpu.New()), cfg, train, test)
}

func loadDatasets(cfg config) (train, test *data.Dataset, err error) {
	if cfg.csvPath != "" {
		full, lerr := data.LoadCSV(cfg.csvPath, 10, cfg.maxTrain)
		if lerr != nil {
			return nil, nil, lerr
		}
		return splitCSV(full)
	}

	if train, err = data.LoadIDX(cfg.dataDir, true); err != nil {
		return nil, nil, err
	}
	if cfg.maxTrain > 0 && train.NumExamples() > cfg.maxTrain {
		train, _, err = train.Split(float64(cfg.maxTrain) / float64(train.NumExamples()))
		if err != nil {
			return nil, nil, err
		}
	}
	test, err = data.LoadIDX(cfg.dataDir, false)
	return train, test, err
}

func splitCSV(full *data.Dataset) (*data.Dataset, *data.Dataset, error) {
	return full.Split(0.9)
}

func trainAndCertify[B tensor.Backend](backend *autodiff.Backend[B], cfg config, train, test *data.Dataset) error {
	const numClasses = 10

	hidden, err := nn.NewBayesianLinear(backend, train.NumFeatures, cfg.hidden,
		cfg.priorSigma, cfg.initSigma, nn.ActivationReLU, cfg.seed)
	if err != nil {
		return err
	}
	output, err := nn.NewBayesianLinear(backend, cfg.hidden, numClasses,
		cfg.priorSigma, cfg.initSigma, nn.ActivationSoftmax, cfg.seed+1)
	if err != nil {
		return err
	}

	model, err := bayes.NewClassifier(
		[]nn.StochasticLayer[*autodiff.Backend[B]]{hidden, output},
		numClasses,
		bayes.Config{
			ProbThreshold:       cfg.threshold,
			NormalizeSurrogate:  cfg.normalize,
			OraclePriorVariance: cfg.oracle,
		},
	)
	if err != nil {
		return err
	}

	trainLoader, err := data.NewLoader(backend, train.Features, train.Labels,
		train.NumFeatures, cfg.batchSize, true, cfg.seed)
	if err != nil {
		return err
	}
	testLoader, err := data.NewLoader(backend, test.Features, test.Labels,
		test.NumFeatures, cfg.batchSize, false, cfg.seed)
	if err != nil {
		return err
	}

	var params []*tensor.RawTensor
	for _, p := range model.Parameters() {
		params = append(params, p.Raw())
	}
	opt, err := optim.NewAdam(params, cfg.lr)
	if err != nil {
		return err
	}

	n := trainLoader.Len()
	tape := backend.GetTape()
	log.Printf("training on %s: %d parameter tensors, %d examples",
		backend.Name(), len(params), n)

	for epoch := 1; epoch <= cfg.epochs; epoch++ {
		start := time.Now()
		trainLoader.Reset()

		var epochLoss float64
		var steps int
		for {
			x, y, ok := trainLoader.Next()
			if !ok {
				break
			}

			tape.Clear()
			tape.Start()
			kl, surrogate, terr := model.ForwardTrain(x, y, cfg.numSamples)
			if terr != nil {
				return terr
			}
			// PAC-Bayes objective: empirical surrogate plus the KL
			// complexity scaled by the training set size.
			objective := surrogate.Add(kl.DivScalar(float32(n)))
			tape.Stop()

			grads, berr := autodiff.Backward(objective)
			if berr != nil {
				return berr
			}
			if serr := opt.Step(grads); serr != nil {
				return serr
			}

			epochLoss += float64(objective.Item())
			steps++
		}

		errRate, avgSurrogate, eerr := bayes.EvaluateOnLoader(model, testLoader)
		if eerr != nil {
			return eerr
		}
		log.Printf("epoch %d: objective=%.4f test_error=%.4f test_surrogate=%.4f (%s)",
			epoch, epochLoss/float64(steps), errRate, avgSurrogate, time.Since(start).Round(time.Millisecond))
	}

	trainErr, trainSurrogate, err := bayes.EvaluateOnLoader(model, trainLoader)
	if err != nil {
		return err
	}
	klValue := float64(model.KL().Item())

	bound, err := bayes.InvertedKLBound(trainErr, klValue, n, cfg.delta)
	if err != nil {
		return err
	}
	log.Printf("final: train_error=%.4f train_surrogate=%.4f kl=%.1f", trainErr, trainSurrogate, klValue)
	log.Printf("certified risk bound (delta=%.3f): %.4f", cfg.delta, bound)
	return nil
}
