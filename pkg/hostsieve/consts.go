/*
Copyright © 2025 Nissar Chababy

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package hostsieve

// Flag mirrors internal/ruler.Flag for callers of this package who don't
// want to import the internal tree directly.
type Flag string

const (
	// FlagAll selects the ends-with ("ALL") rule family.
	FlagAll Flag = "ALL@"
	// FlagReg selects the regex ("REG") rule family.
	FlagReg Flag = "REG@"
	// FlagRzd selects the TLD-expansion ("RZD"/"RZDB") rule family.
	FlagRzd Flag = "RZD@"
)
