/**
 * Copyright 2025-present Coinbase Global, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package config

import (
	"fmt"
	"os"
	"path/filepath"

	"x402-agent-market-go/internal/models"

	"gopkg.in/yaml.v2"
)

type contractsFile struct {
	Contracts models.ContractsConfig `yaml:"contracts"`
}

// LoadContracts reads deployed contract addresses from an optional YAML file,
// then lets AGENT_CONTRACT_ADDRESS, SERVICE_CONTRACT_ADDRESS,
// MARKET_CONTRACT_ADDRESS and X402_PAYMENT_CONTRACT override each entry.
// An empty path skips the file.
func LoadContracts(path string) (models.ContractsConfig, error) {
	var contracts models.ContractsConfig

	if path != "" {
		if !filepath.IsAbs(path) {
			wd, err := os.Getwd()
			if err != nil {
				return contracts, fmt.Errorf("failed to get working directory: %w", err)
			}
			path = filepath.Join(wd, path)
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return contracts, fmt.Errorf("unable to read %s: %w", path, err)
		}

		var file contractsFile
		if err := yaml.Unmarshal(data, &file); err != nil {
			return contracts, fmt.Errorf("unable to parse %s: %w", path, err)
		}
		contracts = file.Contracts
	}

	contracts.Agent = getEnvString("AGENT_CONTRACT_ADDRESS", contracts.Agent)
	contracts.Service = getEnvString("SERVICE_CONTRACT_ADDRESS", contracts.Service)
	contracts.Market = getEnvString("MARKET_CONTRACT_ADDRESS", contracts.Market)
	contracts.X402Payment = getEnvString("X402_PAYMENT_CONTRACT", contracts.X402Payment)
	return contracts, nil
}
